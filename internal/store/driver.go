package store

// The pure-Go SQLite driver keeps the binary cgo-free, which matters for
// the static distribution targets.
import _ "modernc.org/sqlite"

// DriverName identifies the registered database/sql driver.
const DriverName = "sqlite"
