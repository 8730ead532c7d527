package services

import (
	"fmt"
	"sort"
	"testing"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCriteria(t *testing.T) {
	crit, err := DecodeCriteria([]byte(`{"property":"tags","values":["java","go"]}`))
	require.NoError(t, err)
	leaf, ok := crit.(Filter)
	require.True(t, ok)
	assert.Equal(t, "tags", leaf.Property)
	assert.Equal(t, []string{"java", "go"}, leaf.Values)

	crit, err = DecodeCriteria([]byte(`{"not":{"allOf":[{"property":"posts.author","values":["user:default/bob"]},{"anyOf":[{"property":"tags","values":["go"]}]}]}}`))
	require.NoError(t, err)
	not, ok := crit.(Not)
	require.True(t, ok)
	all, ok := not.Not.(AllOf)
	require.True(t, ok)
	require.Len(t, all.AllOf, 2)
	_, ok = all.AllOf[1].(AnyOf)
	assert.True(t, ok)

	crit, err = DecodeCriteria(nil)
	require.NoError(t, err)
	assert.Nil(t, crit)

	_, err = DecodeCriteria([]byte(`{"values":["orphan"]}`))
	assert.Error(t, err)
}

// Posts covering every subset of three tags, one post per subset; the
// index of each post is the bitmask of the tags it carries.
func seedTagLattice(t *testing.T, author string, tags [3]string) [8]uint {
	var ids [8]uint
	for mask := 0; mask < 8; mask++ {
		var postTags []models.Tag
		for bit := 0; bit < 3; bit++ {
			if mask&(1<<bit) != 0 {
				postTags = append(postTags, models.Tag{Tag: tags[bit]})
			}
		}
		item, err := NewPost(models.Post{
			Author:  author,
			Title:   fmt.Sprintf("lattice %d", mask),
			Content: "content",
			Type:    models.PostTypeQuestion,
			Tags:    postTags,
		})
		require.NoError(t, err)
		ids[mask] = item.ID
	}
	return ids
}

func collectFilteredIDs(t *testing.T, author string, crit Criteria) []uint {
	tx := database.C.Model(&models.Post{}).Where("posts.author = ?", author)
	tx = ApplyFilter(tx, crit, FilterResourcePosts, false)

	var ids []uint
	require.NoError(t, tx.Pluck("posts.id", &ids).Error)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func pick(ids [8]uint, masks ...int) []uint {
	out := make([]uint, 0, len(masks))
	for _, mask := range masks {
		out = append(out, ids[mask])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestApplyFilterCombinators(t *testing.T) {
	author := "user:default/filter-lattice"
	tags := [3]string{"flt-a", "flt-b", "flt-c"}
	ids := seedTagLattice(t, author, tags)

	a := Filter{Property: "tags", Values: []string{tags[0]}}
	b := Filter{Property: "tags", Values: []string{tags[1]}}
	ab := Filter{Property: "tags", Values: []string{tags[0], tags[1]}}

	cases := []struct {
		name     string
		criteria Criteria
		expected []uint
	}{
		{"single tag", a, pick(ids, 1, 3, 5, 7)},
		{"multi-value leaf is any-of", ab, pick(ids, 1, 2, 3, 5, 6, 7)},
		{"allOf", AllOf{AllOf: []Criteria{a, b}}, pick(ids, 3, 7)},
		{"anyOf", AnyOf{AnyOf: []Criteria{a, b}}, pick(ids, 1, 2, 3, 5, 6, 7)},
		{"not leaf", Not{Not: a}, pick(ids, 0, 2, 4, 6)},
		{"not multi-value leaf means has none", Not{Not: ab}, pick(ids, 0, 4)},
		{"allOf with negated branch", AllOf{AllOf: []Criteria{a, Not{Not: b}}}, pick(ids, 1, 5)},
		{"double negation", Not{Not: Not{Not: a}}, pick(ids, 1, 3, 5, 7)},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, collectFilteredIDs(t, author, tt.criteria))
		})
	}
}

// Negation threads down to the leaves without swapping the combinator, so
// NOT over anyOf is "any branch excludes", not De Morgan's conjunction.
func TestApplyFilterNegationThreading(t *testing.T) {
	author := "user:default/filter-negate"
	tags := [3]string{"neg-a", "neg-b", "neg-c"}
	ids := seedTagLattice(t, author, tags)

	a := Filter{Property: "tags", Values: []string{tags[0]}}
	b := Filter{Property: "tags", Values: []string{tags[1]}}

	notAnyOf := collectFilteredIDs(t, author, Not{Not: AnyOf{AnyOf: []Criteria{a, b}}})
	assert.Equal(t, pick(ids, 0, 1, 2, 4, 5, 6), notAnyOf)

	notAllOf := collectFilteredIDs(t, author, Not{Not: AllOf{AllOf: []Criteria{a, b}}})
	assert.Equal(t, pick(ids, 0, 4), notAllOf)
}

func TestApplyFilterColumnLeaves(t *testing.T) {
	author := "user:default/filter-columns"
	item, err := NewPost(models.Post{
		Author:  author,
		Title:   "column leaf probe",
		Content: "content",
		Type:    models.PostTypeArticle,
	})
	require.NoError(t, err)

	byAuthor := collectFilteredIDs(t, author, Filter{Property: "posts.author", Values: []string{author}})
	assert.Equal(t, []uint{item.ID}, byAuthor)

	// Empty values compile to a null check on the column.
	nullURL := collectFilteredIDs(t, author, Filter{Property: "posts.url", Values: nil})
	assert.Equal(t, []uint{item.ID}, nullURL)

	notNullURL := collectFilteredIDs(t, author, Not{Not: Filter{Property: "posts.url", Values: nil}})
	assert.Empty(t, notNullURL)

	// Malformed property names degrade to an always-true fragment.
	passthrough := collectFilteredIDs(t, author, Filter{Property: "posts.author; DROP TABLE posts", Values: []string{"x"}})
	assert.Equal(t, []uint{item.ID}, passthrough)
}

func TestApplyFilterEntityRefs(t *testing.T) {
	author := "user:default/filter-entities"
	ref := "component:default/filter-probe"

	tagged, err := NewPost(models.Post{
		Author:   author,
		Title:    "attached to entity",
		Content:  "content",
		Type:     models.PostTypeQuestion,
		Entities: []models.Entity{{EntityRef: ref}},
	})
	require.NoError(t, err)
	plain, err := NewPost(models.Post{
		Author:  author,
		Title:   "no entity",
		Content: "content",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)

	matched := collectFilteredIDs(t, author, Filter{Property: "entityRefs", Values: []string{ref}})
	assert.Equal(t, []uint{tagged.ID}, matched)

	excluded := collectFilteredIDs(t, author, Not{Not: Filter{Property: "entityRefs", Values: []string{ref}}})
	assert.Equal(t, []uint{plain.ID}, excluded)
}

func TestApplyFilterTagExperts(t *testing.T) {
	author := "user:default/filter-experts"
	expert := "user:default/the-expert"

	expertPost, err := NewPost(models.Post{
		Author:  author,
		Title:   "expert territory",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "exp-go"}},
	})
	require.NoError(t, err)
	_, err = NewPost(models.Post{
		Author:  author,
		Title:   "no expert here",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "exp-misc"}},
	})
	require.NoError(t, err)

	ok, err := AddTagExpert("exp-go", expert)
	require.NoError(t, err)
	require.True(t, ok)

	matched := collectFilteredIDs(t, author, Filter{Property: "tag.experts", Values: []string{expert}})
	assert.Equal(t, []uint{expertPost.ID}, matched)
}

func TestApplyFilterOnAnswers(t *testing.T) {
	author := "user:default/filter-answers"

	tagged, err := NewPost(models.Post{
		Author:  author,
		Title:   "question with a tag",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "ans-scope"}},
	})
	require.NoError(t, err)
	plain, err := NewPost(models.Post{
		Author:  author,
		Title:   "question without",
		Content: "content",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)

	taggedAnswer, err := NewAnswer(models.Answer{PostID: tagged.ID, Author: author, Content: "yes"})
	require.NoError(t, err)
	_, err = NewAnswer(models.Answer{PostID: plain.ID, Author: author, Content: "no"})
	require.NoError(t, err)

	tx := database.C.Model(&models.Answer{}).Where("answers.author = ?", author)
	tx = ApplyFilter(tx, Filter{Property: "tags", Values: []string{"ans-scope"}}, FilterResourceAnswers, false)

	var ids []uint
	require.NoError(t, tx.Pluck("answers.id", &ids).Error)
	assert.Equal(t, []uint{taggedAnswer.ID}, ids)
}
