package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"task-manager-api/internal/validation"
)

// Kind は失敗の種類です。
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUniqueViolation
	KindForeignKeyViolation
	KindInvalidFormat
	KindTokenMalformed
	KindTokenExpired
	KindTokenMissing
	KindDeclared
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUniqueViolation:
		return "unique_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindInvalidFormat:
		return "invalid_format"
	case KindTokenMalformed:
		return "token_malformed"
	case KindTokenExpired:
		return "token_expired"
	case KindTokenMissing:
		return "token_missing"
	case KindDeclared:
		return "declared"
	default:
		return "internal"
	}
}

var (
	mysqlUnique     = map[uint16]bool{1062: true}
	mysqlForeignKey = map[uint16]bool{1451: true, 1452: true}
	mysqlFormat     = map[uint16]bool{1264: true, 1265: true, 1292: true, 1366: true, 3819: true}

	pgUnique     = map[string]bool{"23505": true}
	pgForeignKey = map[string]bool{"23503": true}
	pgFormat     = map[string]bool{"22P02": true, "22001": true, "23514": true}
)

// KindOf はエラーの種類を判定します。先に一致したものが優先されます。
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var (
		verrs     validator.ValidationErrors
		verr      *ValidationError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &verrs) || errors.As(err, &verr) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindValidation
	}

	var myErr *mysql.MySQLError
	var pgErr *pgconn.PgError
	hasMy := errors.As(err, &myErr)
	hasPg := errors.As(err, &pgErr)

	switch {
	case hasMy && mysqlUnique[myErr.Number], hasPg && pgUnique[pgErr.Code]:
		return KindUniqueViolation
	case hasMy && mysqlForeignKey[myErr.Number], hasPg && pgForeignKey[pgErr.Code]:
		return KindForeignKeyViolation
	case hasMy && mysqlFormat[myErr.Number], hasPg && pgFormat[pgErr.Code], errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrTokenMalformed):
		return KindTokenMalformed
	case errors.Is(err, ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, ErrTokenMissing):
		return KindTokenMissing
	}

	var declared *Error
	if errors.As(err, &declared) {
		return KindDeclared
	}
	return KindInternal
}

// Envelope はエラー応答の本文です。
type Envelope struct {
	Status  int    `json:"-"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Classifier はエラーを応答に変換します。
type Classifier struct {
	production bool
}

func NewClassifier(production bool) *Classifier {
	return &Classifier{production: production}
}

// Classify は err を Kind ごとのステータスとメッセージに変換します。
func (c *Classifier) Classify(err error) Envelope {
	kind := KindOf(err)
	env := Envelope{Success: false}

	switch kind {
	case KindValidation:
		env.Status, env.Message = http.StatusBadRequest, validationMessage(err)
	case KindUniqueViolation:
		env.Status, env.Message = http.StatusConflict, "value already exists"
	case KindForeignKeyViolation:
		env.Status, env.Message = http.StatusBadRequest, "invalid reference"
	case KindInvalidFormat:
		env.Status, env.Message = http.StatusBadRequest, "invalid data format"
	case KindTokenMalformed:
		env.Status, env.Message = http.StatusUnauthorized, "invalid token"
	case KindTokenExpired:
		env.Status, env.Message = http.StatusUnauthorized, "expired token"
	case KindTokenMissing:
		env.Status, env.Message = http.StatusUnauthorized, "missing token"
	case KindDeclared:
		var declared *Error
		errors.As(err, &declared)
		env.Status, env.Message = declared.Status, declared.Message
	case KindInternal:
		env.Status, env.Message = http.StatusInternalServerError, "internal server error"
		if !c.production && err != nil {
			env.Detail = err.Error()
		}
	default:
		panic(fmt.Sprintf("apperror: unhandled kind %d", kind))
	}
	return env
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return validation.Message(verrs[0])
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%q must be a %s", typeErr.Field, typeErr.Type.String())
	}
	return "invalid request body"
}
