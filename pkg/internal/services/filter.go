package services

import (
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Criteria is a boolean expression over filter predicates, handed in by
// the permission layer or built from request parameters. It is evaluated
// against a resource context which decides the correlation key and the
// join path of the tags/entityRefs/tag.experts predicates.
type Criteria interface {
	criteriaNode()
}

type Filter struct {
	Property string   `json:"property"`
	Values   []string `json:"values"`
}

type AllOf struct {
	AllOf []Criteria `json:"allOf"`
}

type AnyOf struct {
	AnyOf []Criteria `json:"anyOf"`
}

type Not struct {
	Not Criteria `json:"not"`
}

func (Filter) criteriaNode() {}
func (AllOf) criteriaNode()  {}
func (AnyOf) criteriaNode()  {}
func (Not) criteriaNode()    {}

type FilterResource string

const (
	FilterResourcePosts       = FilterResource("posts")
	FilterResourceAnswers     = FilterResource("answers")
	FilterResourceComments    = FilterResource("comments")
	FilterResourceCollections = FilterResource("collections")
	FilterResourceTags        = FilterResource("tags")
)

// Correlation key used when a predicate resolves to a set of post ids.
var resourcePostKeys = map[FilterResource]string{
	FilterResourcePosts:       "posts.id",
	FilterResourceAnswers:     "answers.post_id",
	FilterResourceComments:    "comments.post_id",
	FilterResourceCollections: "collections.id",
}

var columnPattern = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)?$`)

// DecodeCriteria parses the wire shape of a criteria tree: a leaf
// {property, values}, or one of {allOf: [...]}, {anyOf: [...]}, {not: ...}.
func DecodeCriteria(raw []byte) (Criteria, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if inner, ok := probe["not"]; ok {
		child, err := DecodeCriteria(inner)
		if err != nil {
			return nil, err
		}
		return Not{Not: child}, nil
	}
	if list, ok := probe["allOf"]; ok {
		children, err := decodeCriteriaList(list)
		if err != nil {
			return nil, err
		}
		return AllOf{AllOf: children}, nil
	}
	if list, ok := probe["anyOf"]; ok {
		children, err := decodeCriteriaList(list)
		if err != nil {
			return nil, err
		}
		return AnyOf{AnyOf: children}, nil
	}

	var leaf Filter
	if err := json.Unmarshal(raw, &leaf); err != nil {
		return nil, err
	}
	if len(leaf.Property) == 0 {
		return nil, fmt.Errorf("criteria node is neither a combinator nor a filter leaf")
	}
	return leaf, nil
}

func decodeCriteriaList(raw json.RawMessage) ([]Criteria, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	children := make([]Criteria, 0, len(items))
	for _, item := range items {
		child, err := DecodeCriteria(item)
		if err != nil {
			return nil, err
		}
		if child != nil {
			children = append(children, child)
		}
	}
	return children, nil
}

// ApplyFilter compiles the criteria tree into exactly one conjunctive
// WHERE clause on tx. Negation is threaded as a flag: it flips at Not
// nodes, passes through AllOf/AnyOf unchanged, and is only applied at the
// leaves (IN vs NOT IN, IS NULL vs IS NOT NULL). The combinator type is
// never swapped, so NOT over a multi-value tags leaf reads as "has none
// of", not as textbook boolean negation of the OR.
func ApplyFilter(tx *gorm.DB, criteria Criteria, resource FilterResource, negate bool) *gorm.DB {
	if criteria == nil {
		return tx
	}
	return tx.Where(compileCriteria(freshBuilder(tx), criteria, resource, negate))
}

func freshBuilder(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true})
}

func compileCriteria(db *gorm.DB, criteria Criteria, resource FilterResource, negate bool) *gorm.DB {
	switch node := criteria.(type) {
	case Not:
		return compileCriteria(db, node.Not, resource, !negate)
	case AllOf:
		cond := db
		for _, child := range node.AllOf {
			cond = cond.Where(compileCriteria(freshBuilder(db), child, resource, negate))
		}
		return cond
	case AnyOf:
		cond := db
		for i, child := range node.AnyOf {
			group := compileCriteria(freshBuilder(db), child, resource, negate)
			if i == 0 {
				cond = cond.Where(group)
			} else {
				cond = cond.Or(group)
			}
		}
		return cond
	case Filter:
		return compileLeaf(db, node, resource, negate)
	}
	return db
}

func compileLeaf(db *gorm.DB, leaf Filter, resource FilterResource, negate bool) *gorm.DB {
	values := lo.Compact(leaf.Values)

	switch leaf.Property {
	case "tags":
		if len(values) == 0 {
			return db
		}
		if resource == FilterResourceTags {
			return whereInValues(db, "tags.tag", values, negate)
		}
		sub := freshBuilder(db).Table("post_tags").
			Select("post_tags.post_id").
			Joins("INNER JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.tag IN ?", values)
		return whereInPostScope(db, sub, resource, negate)
	case "entityRefs":
		if len(values) == 0 {
			return db
		}
		sub := freshBuilder(db).Table("post_entities").
			Select("post_entities.post_id").
			Joins("INNER JOIN entities ON entities.id = post_entities.entity_id").
			Where("entities.entity_ref IN ?", values)
		return whereInPostScope(db, sub, resource, negate)
	case "tag.experts":
		if len(values) == 0 {
			return db
		}
		if resource == FilterResourceTags {
			sub := freshBuilder(db).Table("tag_experts").
				Select("tag_experts.tag_id").
				Where("tag_experts.user_ref IN ?", values)
			return whereInSubquery(db, "tags.id", sub, negate)
		}
		sub := freshBuilder(db).Table("post_tags").
			Select("post_tags.post_id").
			Joins("INNER JOIN tag_experts ON tag_experts.tag_id = post_tags.tag_id").
			Where("tag_experts.user_ref IN ?", values)
		return whereInPostScope(db, sub, resource, negate)
	}

	column := leaf.Property
	if !columnPattern.MatchString(column) {
		// Unknown shapes degrade to an always-true fragment instead of an
		// error; the permission layer owns validation.
		return db
	}
	if len(values) == 0 {
		if negate {
			return db.Where(fmt.Sprintf("%s IS NOT NULL", column))
		}
		return db.Where(fmt.Sprintf("%s IS NULL", column))
	}
	return whereInValues(db, column, values, negate)
}

// whereInPostScope correlates a post-id subquery against the resource's
// key column. Collections need one more hop through their membership
// table since the subquery yields post ids, not collection ids.
func whereInPostScope(db *gorm.DB, sub *gorm.DB, resource FilterResource, negate bool) *gorm.DB {
	key, ok := resourcePostKeys[resource]
	if !ok {
		return db
	}
	if resource == FilterResourceCollections {
		member := freshBuilder(db).Table("collection_posts").
			Select("collection_posts.collection_id").
			Where("collection_posts.post_id IN (?)", sub)
		return whereInSubquery(db, key, member, negate)
	}
	return whereInSubquery(db, key, sub, negate)
}

func whereInSubquery(db *gorm.DB, column string, sub *gorm.DB, negate bool) *gorm.DB {
	if negate {
		return db.Where(column+" NOT IN (?)", sub)
	}
	return db.Where(column+" IN (?)", sub)
}

func whereInValues(db *gorm.DB, column string, values []string, negate bool) *gorm.DB {
	if negate {
		return db.Where(column+" NOT IN ?", values)
	}
	return db.Where(column+" IN ?", values)
}
