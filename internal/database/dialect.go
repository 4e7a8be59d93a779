package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect はSQL方言の違い（ドライバ名、プレースホルダ、LIKE演算子）を表します。
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// ParseDialect は DB_DRIVER の値を Dialect に変換します。
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case MySQL, Postgres:
		return Dialect(driver), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// DriverName は database/sql に登録されたドライバ名を返します。
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

// Numbered はプレースホルダが $1, $2... の番号付き形式かどうかを返します。
// 番号付きの場合、同じ値を複数回参照しても引数は一つで済みます。
func (d Dialect) Numbered() bool {
	return d == Postgres
}

// Placeholder は n 番目（1始まり）のバインド変数を返します。
func (d Dialect) Placeholder(n int) string {
	if d.Numbered() {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// ILike は大文字小文字を区別しない部分一致演算子を返します。
// MySQL は _ci 照合順序のため通常の LIKE で足ります。
func (d Dialect) ILike() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// SupportsReturning は INSERT ... RETURNING が使えるかどうかを返します。
func (d Dialect) SupportsReturning() bool {
	return d == Postgres
}

// Rebind は ? プレースホルダを方言の形式に書き換えます。
// 文字列リテラル内の ? は考慮しないため、クエリ側で使わないでください。
func (d Dialect) Rebind(query string) string {
	if !d.Numbered() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
