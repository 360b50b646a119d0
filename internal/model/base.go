package model

import "time"

// BaseModel carries the primary key and modification stamp every master
// record has. Name is the record identifier (item code, customer id, lot id).
type BaseModel struct {
	Name     string    `db:"name" json:"name" yaml:"name"`
	Modified time.Time `db:"modified" json:"modified" yaml:"modified"`
}
