package executor

import (
	"context"
	"database/sql"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/schema"
)

func savepointName() string {
	return "ormcore_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// insertWithSavepoint emulates an ignore-on-conflict insert on servers without native support.
// A plain insert runs inside a savepoint; a unique violation rolls back to the savepoint so
// the enclosing transaction stays usable.
func (s *Session) insertWithSavepoint(ctx context.Context, v reflect.Value, t *schema.Table, columns []string, values []any) (bool, error) {
	// SAVEPOINT, INSERT and ROLLBACK TO must share a connection.
	if _, pooled := s.ex.(*sql.DB); pooled {
		return false, ormerr.NewConfigurationError(
			"%s skips duplicate keys with savepoints, which need a transaction or a dedicated connection", s.dialect)
	}

	name := s.dialect.Quote(savepointName())

	if _, err := s.exec(ctx, "savepoint", t.Name, "SAVEPOINT "+name, nil); err != nil {
		return false, err
	}

	b := query.Insert(s.dialect, t.Name).Columns(columns...).Values(values...)
	inserted, err := s.runInsert(ctx, v, t, b)
	if err != nil {
		if !ormerr.IsUniqueViolation(err) {
			return false, err
		}
		debug.Debug("insert conflicted, rolling back to savepoint", "table", t.Name, "savepoint", name)
		if _, rerr := s.exec(ctx, "rollback to savepoint", t.Name, "ROLLBACK TO SAVEPOINT "+name, nil); rerr != nil {
			return false, rerr
		}
		return false, nil
	}

	if _, err := s.exec(ctx, "release savepoint", t.Name, "RELEASE SAVEPOINT "+name, nil); err != nil {
		return false, err
	}
	return inserted, nil
}
