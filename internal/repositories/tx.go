package repositories

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager runs a function inside a database transaction. *gorm.DB
// satisfies it directly; tests substitute a pass-through.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
