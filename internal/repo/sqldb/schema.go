package sqldb

func schema(dialect Dialect) []string {
	if dialect == DialectPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS account (
				account_id BIGSERIAL    PRIMARY KEY,
				username   VARCHAR(255) NOT NULL UNIQUE,
				password   VARCHAR(255) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS message (
				message_id        BIGSERIAL    PRIMARY KEY,
				posted_by         BIGINT       NOT NULL REFERENCES account (account_id) ON DELETE CASCADE,
				message_text      VARCHAR(255) NOT NULL,
				time_posted_epoch BIGINT
			)`,
			`CREATE INDEX IF NOT EXISTS message_posted_by_idx ON message (posted_by)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS account (
			account_id INTEGER PRIMARY KEY AUTOINCREMENT,
			username   TEXT    NOT NULL UNIQUE,
			password   TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS message (
			message_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			posted_by         INTEGER NOT NULL REFERENCES account (account_id) ON DELETE CASCADE,
			message_text      TEXT    NOT NULL CHECK (length(message_text) <= 255),
			time_posted_epoch INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS message_posted_by_idx ON message (posted_by)`,
	}
}
