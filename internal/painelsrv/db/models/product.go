package models

import (
	"database/sql"
	"strconv"
)

/*
 Field         | Type         | Null | Key | Default           | Extra
---------------+--------------+------+-----+-------------------+----------------
 id            | int          | NO   | PRI | NULL              | auto_increment
 nome          | varchar(128) | NO   | UNI | NULL              |
 status        | varchar(32)  | NO   |     | Under Development |
 ultimo_acesso | datetime     | YES  |     | NULL              |
*/

// Product is one entry of the panel catalog (table produtos). ID is NULL
// only for virtual entries owned by the presentation layer; those never
// reach storage.
type Product struct {
	ID         sql.NullInt64 `db:"id"`
	Name       string        `db:"nome"`
	Status     string        `db:"status"`
	LastAccess sql.NullTime  `db:"ultimo_acesso"`
}

// Status vocabulary. Storage accepts arbitrary strings; the service layer
// warns when persisting anything outside this set.
const (
	StatusUnderDevelopment = "Under Development"
	StatusUpdating         = "Updating"
	StatusReady            = "Ready"
)

// KnownStatus reports whether s belongs to the fixed vocabulary.
func KnownStatus(s string) bool {
	switch s {
	case StatusUnderDevelopment, StatusUpdating, StatusReady:
		return true
	}
	return false
}

// Virtual reports whether the product exists only in the panel.
func (p Product) Virtual() bool {
	return !p.ID.Valid
}

// Key returns the identity used for snapshot diffing: the storage id when
// present, otherwise a name-derived sentinel so virtual entries stay
// trackable across refresh cycles.
func (p Product) Key() string {
	if p.ID.Valid {
		return strconv.FormatInt(p.ID.Int64, 10)
	}
	return "name:" + p.Name
}
