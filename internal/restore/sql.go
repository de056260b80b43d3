package restore

import (
	"fmt"
	"strings"
)

func CreateDatabaseStatement(name, charset string) string {
	stmt := "CREATE DATABASE IF NOT EXISTS " + quoteIdent(name)
	if charset != "" && charset != "binary" && isToken(charset) {
		stmt += " CHARACTER SET " + charset
	}
	return stmt
}

// GrantStatement creates the account if needed and grants it every
// privilege on the database. One statement pair per account host.
func GrantStatement(database, user, host, password string) string {
	account := quoteString(user) + "@" + quoteString(host)
	return fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED BY %s; GRANT ALL PRIVILEGES ON %s.* TO %s",
		account, quoteString(password), quoteIdent(database), account)
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isToken(s string) bool {
	for _, c := range s {
		if !(c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}
