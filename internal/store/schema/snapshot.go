package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerSnapshot stores one serialized ledger state, newest row wins.
// Payload is the versioned snapshot document; Version is duplicated in a
// column so old layouts can be found without parsing the payload.
type LedgerSnapshot struct {
	ID        string         `gorm:"primaryKey;type:uuid"`
	Version   int            `gorm:"not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (LedgerSnapshot) TableName() string {
	return "ledger_snapshots"
}
