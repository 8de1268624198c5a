package content

// Database drivers for the SQL source. The registered driver names match
// the Dialect constants.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)
