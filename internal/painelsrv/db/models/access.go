package models

import "time"

/*
 Field      | Type         | Null | Key | Default           | Extra
------------+--------------+------+-----+-------------------+----------------
 id         | int          | NO   | PRI | NULL              | auto_increment
 usuario    | varchar(64)  | NO   |     | NULL              |
 produto_id | int          | NO   | MUL | NULL              | FK produtos.id ON DELETE CASCADE
 momento    | datetime     | NO   |     | CURRENT_TIMESTAMP |
*/

// AccessEntry is one appended access-log row (table acessos). Entries are
// written once and never updated or deleted by this core; pruning history
// belongs to the database owner.
type AccessEntry struct {
	ID        int64     `db:"id"`
	User      string    `db:"usuario"`
	ProductID int64     `db:"produto_id"`
	Moment    time.Time `db:"momento"`
}
