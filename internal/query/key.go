// Package query caches read results per typed key and invalidates them after writes.
package query

import (
	"fmt"
	"strconv"

	"taskdash/internal/service"
)

// Resource is the kind of server data a key refers to.
type Resource int

const (
	ResourceTasks Resource = iota + 1
	ResourceTeams
)

func (r Resource) String() string {
	switch r {
	case ResourceTasks:
		return "tasks"
	case ResourceTeams:
		return "teams"
	}
	return "resource(" + strconv.Itoa(int(r)) + ")"
}

// Op is the read operation a key refers to. OpAny is only valid in a Match.
type Op int

const (
	OpAny Op = iota
	OpList
	OpDetail
)

func (o Op) String() string {
	switch o {
	case OpAny:
		return "any"
	case OpList:
		return "list"
	case OpDetail:
		return "detail"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Key identifies one cached query. Keys are comparable and used as map keys.
type Key struct {
	Resource Resource
	Op       Op
	// ID is set for OpDetail.
	ID string
	// Params encodes list parameters for OpList.
	Params string
}

func (k Key) String() string {
	s := k.Resource.String() + "/" + k.Op.String()
	if k.ID != "" {
		s += "/" + k.ID
	}
	if k.Params != "" {
		s += "?" + k.Params
	}
	return s
}

// TaskList is the key for a task list query.
func TaskList(p service.ListTasksParams) Key {
	return Key{
		Resource: ResourceTasks,
		Op:       OpList,
		Params:   fmt.Sprintf("page=%d&size=%d&search=%s", p.Page, p.Size, p.Search),
	}
}

// TaskDetail is the key for a single task query.
func TaskDetail(id int64) Key {
	return Key{Resource: ResourceTasks, Op: OpDetail, ID: strconv.FormatInt(id, 10)}
}

// TeamList is the key for the team list query.
func TeamList() Key {
	return Key{Resource: ResourceTeams, Op: OpList}
}

// TeamDetail is the key for a single team query.
func TeamDetail(id string) Key {
	return Key{Resource: ResourceTeams, Op: OpDetail, ID: id}
}

// Match selects keys for invalidation.
type Match struct {
	Resource Resource
	// Op narrows the match; OpAny matches every operation.
	Op Op
	// ID narrows the match to one detail key; empty matches every id.
	ID string
}

// Matches reports whether k is selected by m.
func (m Match) Matches(k Key) bool {
	if m.Resource != k.Resource {
		return false
	}
	if m.Op != OpAny && m.Op != k.Op {
		return false
	}
	if m.ID != "" && m.ID != k.ID {
		return false
	}
	return true
}

// AllOf matches every key of a resource.
func AllOf(r Resource) Match { return Match{Resource: r} }

// ListsOf matches every list key of a resource, whatever the parameters.
func ListsOf(r Resource) Match { return Match{Resource: r, Op: OpList} }

// DetailOf matches the detail key of one item.
func DetailOf(r Resource, id string) Match { return Match{Resource: r, Op: OpDetail, ID: id} }
