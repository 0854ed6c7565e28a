package storage

// Each backend creates the same single table. The timestamp column is filled
// by a database default in unix seconds; id fixes insertion order.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		message TEXT NOT NULL,
		"timestamp" BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM CURRENT_TIMESTAMP)::BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages ("timestamp")`,
}

var mysqlSchema = []string{
	"CREATE TABLE IF NOT EXISTS messages (" +
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
		"username VARCHAR(255) NOT NULL, " +
		"message TEXT NOT NULL, " +
		"`timestamp` BIGINT NOT NULL DEFAULT (UNIX_TIMESTAMP()), " +
		"INDEX idx_messages_timestamp (`timestamp`)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci",
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		message TEXT NOT NULL,
		"timestamp" INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages ("timestamp")`,
}
