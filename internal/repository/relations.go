package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RelationSet manages a many-to-many join table from one owning side.
// Add connects members without touching existing edges; Replace makes the
// stored member set equal to the given one.
type RelationSet struct {
	Table        string
	OwnerColumn  string
	MemberColumn string
	MemberType   string
}

var (
	teacherSubjects = RelationSet{Table: "subject_teachers", OwnerColumn: "teacher_id", MemberColumn: "subject_id", MemberType: "bigint"}
	subjectTeachers = RelationSet{Table: "subject_teachers", OwnerColumn: "subject_id", MemberColumn: "teacher_id", MemberType: "text"}
)

// Add connects the members to owner, ignoring edges that already exist.
func (r RelationSet) Add(ctx context.Context, tx sqlx.ExecerContext, owner interface{}, members interface{}) error {
	arr, n := memberArray(members)
	if n == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, m FROM UNNEST($2::%s[]) AS m ON CONFLICT DO NOTHING`,
		r.Table, r.OwnerColumn, r.MemberColumn, r.MemberType)
	if _, err := tx.ExecContext(ctx, query, owner, arr); err != nil {
		return fmt.Errorf("add %s relation: %w", r.Table, err)
	}
	return nil
}

// Replace removes edges not in members and connects the rest.
func (r RelationSet) Replace(ctx context.Context, tx sqlx.ExecerContext, owner interface{}, members interface{}) error {
	arr, _ := memberArray(members)
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND NOT (%s = ANY($2::%s[]))`,
		r.Table, r.OwnerColumn, r.MemberColumn, r.MemberType)
	if _, err := tx.ExecContext(ctx, query, owner, arr); err != nil {
		return fmt.Errorf("replace %s relation: %w", r.Table, err)
	}
	return r.Add(ctx, tx, owner, members)
}

// ForeignKeyRelation connects rows of a child table to an owner through a
// foreign key column. It only supports connecting since the column is not
// nullable.
type ForeignKeyRelation struct {
	Table     string
	KeyColumn string
}

var parentStudents = ForeignKeyRelation{Table: "students", KeyColumn: "parent_id"}

// Add points the given child rows at owner.
func (r ForeignKeyRelation) Add(ctx context.Context, tx sqlx.ExecerContext, owner string, children []string) error {
	if len(children) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE id = ANY($2::text[])`, r.Table, r.KeyColumn)
	if _, err := tx.ExecContext(ctx, query, owner, pq.Array(children)); err != nil {
		return fmt.Errorf("connect %s: %w", r.Table, err)
	}
	return nil
}

// memberArray never yields a NULL array so that Replace with no members
// clears every edge.
func memberArray(members interface{}) (interface{}, int) {
	switch v := members.(type) {
	case []int64:
		if v == nil {
			v = []int64{}
		}
		return pq.Array(v), len(v)
	case []string:
		if v == nil {
			v = []string{}
		}
		return pq.Array(v), len(v)
	default:
		panic(fmt.Sprintf("repository: unsupported relation members %T", members))
	}
}
