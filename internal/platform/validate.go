package platform

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ValidateSQL parses the statement with the PostgreSQL parser.
func (p *PostgreSQL) ValidateSQL(statement string) error {
	result, err := pg_query.Parse(statement)
	if err != nil {
		return fmt.Errorf("invalid PostgreSQL statement %q: %w", statement, err)
	}
	if n := len(result.GetStmts()); n != 1 {
		return fmt.Errorf("expected a single PostgreSQL statement, got %d in %q", n, statement)
	}
	return nil
}

// Validate runs every statement through the platform's validator. Platforms
// without one accept everything.
func Validate(p Platform, statements []string) error {
	validator, ok := p.(Validator)
	if !ok {
		return nil
	}
	for _, statement := range statements {
		if err := validator.ValidateSQL(statement); err != nil {
			return err
		}
	}
	return nil
}
