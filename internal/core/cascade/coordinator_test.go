// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/core/cascade"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

const authorID int64 = 7

var author = sec.NewViewer(authorID, sec.RoleAuthor)

func newCoordinator(repo node.Repository, mode cascade.Mode) *cascade.Coordinator {
	return cascade.NewCoordinator(repo, mode, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decode(t *testing.T, kind node.Kind, body string) *node.Input {
	t.Helper()
	input, err := node.DecodeInput(kind, strings.NewReader(body))
	require.NoError(t, err)
	return input
}

func children(t *testing.T, repo node.Repository, kind node.Kind, parentID int64) []*node.Node {
	t.Helper()
	nodes, _, err := repo.FindMany(context.Background(), kind, node.Filter{ParentID: &parentID})
	require.NoError(t, err)
	return nodes
}

// failingRepository fails every Create of one kind after the first `after` succeed.
type failingRepository struct {
	node.Repository
	kind  node.Kind
	after int
	seen  int
}

var errStorage = errors.New("disk full")

func (repo *failingRepository) Create(ctx context.Context, n *node.Node) error {
	if n.Kind == repo.kind {
		repo.seen++
		if repo.seen > repo.after {
			return errStorage
		}
	}
	return repo.Repository.Create(ctx, n)
}

func (repo *failingRepository) WithinTx(ctx context.Context, fn func(node.Repository) error) error {
	return repo.Repository.WithinTx(ctx, func(node.Repository) error { return fn(repo) })
}

/*
TestUpsert_EndToEnd submits a four-level library tree without ids and checks
every row, parent key and order.
*/
func TestUpsert_EndToEnd(t *testing.T) {
	repo := node.NewMemoryRepository()
	in := decode(t, node.KindSeries, `{"title":"S1","Books":[{"title":"B1","Chapters":[{"title":"C1","Scenes":[{"title":"Sc1","text":"hi"}]}]}]}`)

	result, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)
	require.NoError(t, err)

	assert.True(t, result.Created())
	assert.Len(t, result.Written, 4)
	assert.Equal(t, authorID, result.Root.AuthorID)
	assert.Equal(t, "S1", result.Root.Title)

	for _, kind := range []node.Kind{node.KindSeries, node.KindBook, node.KindChapter, node.KindScene} {
		assert.Equal(t, 1, repo.Len(kind), kind)
	}

	books := children(t, repo, node.KindBook, result.Root.ID)
	require.Len(t, books, 1)
	assert.Equal(t, "B1", books[0].Title)
	assert.Equal(t, 1, books[0].Order)
	assert.Equal(t, authorID, books[0].AuthorID)

	chapters := children(t, repo, node.KindChapter, books[0].ID)
	require.Len(t, chapters, 1)
	assert.Equal(t, "C1", chapters[0].Title)
	assert.Equal(t, 1, chapters[0].Order)

	scenes := children(t, repo, node.KindScene, chapters[0].ID)
	require.Len(t, scenes, 1)
	assert.Equal(t, "Sc1", scenes[0].Title)
	assert.Equal(t, 1, scenes[0].Order)
	assert.Equal(t, "hi", scenes[0].Attributes["text"])
}

func TestUpsert_ForeignKeysComeFromParent(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()

	// A decoy series the client tries to attach the book to
	decoy := &node.Node{Kind: node.KindSeries, AuthorID: 99, Order: 1}
	require.NoError(t, repo.Create(ctx, decoy))

	in := decode(t, node.KindSeries, `{"title":"Mine","Books":[{"title":"B","seriesId":1,"Chapters":[{"bookId":12345}]}]}`)
	result, err := newCoordinator(repo, cascade.ModeSequential).Upsert(ctx, author, in)
	require.NoError(t, err)

	books := children(t, repo, node.KindBook, result.Root.ID)
	require.Len(t, books, 1)
	assert.NotEqual(t, decoy.ID, result.Root.ID)
	assert.Empty(t, children(t, repo, node.KindBook, decoy.ID))
	assert.Len(t, children(t, repo, node.KindChapter, books[0].ID), 1)
}

func TestUpsert_OrdinalsFollowInputOrder(t *testing.T) {
	repo := node.NewMemoryRepository()
	in := decode(t, node.KindWorld, `{"name":"W","Locations":[{"name":"a"},{"name":"b"},{"name":"c"},{},{"name":"e"}],"Timelines":[{},{"order":9},{}]}`)

	result, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)
	require.NoError(t, err)

	locations := children(t, repo, node.KindLocation, result.Root.ID)
	require.Len(t, locations, 5)
	for index, location := range locations {
		assert.Equal(t, index+1, location.Order)
	}
	assert.Equal(t, "c", locations[2].Title)
	assert.Equal(t, "Unnamed Location", locations[3].Title)

	timelines := children(t, repo, node.KindTimeline, result.Root.ID)
	require.Len(t, timelines, 3)
	assert.Equal(t, []int{1, 3, 9}, []int{timelines[0].Order, timelines[1].Order, timelines[2].Order})
	assert.Equal(t, "Timeline 1", timelines[0].Title)
	assert.Equal(t, "Timeline 3", timelines[1].Title)
	assert.Equal(t, "Timeline 2", timelines[2].Title)
}

func TestUpsert_IdentityRouting(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()
	coordinator := newCoordinator(repo, cascade.ModeSequential)

	first, err := coordinator.Upsert(ctx, author, decode(t, node.KindExploration, `{"title":"E","Scenes":[{"title":"one"}]}`))
	require.NoError(t, err)
	scenes := children(t, repo, node.KindExplorationScene, first.Root.ID)
	require.Len(t, scenes, 1)

	// Same document with ids: updates only
	body := `{"id":` + itoa(first.Root.ID) + `,"title":"E2","Scenes":[{"id":` + itoa(scenes[0].ID) + `,"title":"uno"}]}`
	second, err := coordinator.Upsert(ctx, author, decode(t, node.KindExploration, body))
	require.NoError(t, err)

	assert.False(t, second.Created())
	assert.Equal(t, first.Root.ID, second.Root.ID)
	assert.Equal(t, 1, repo.Len(node.KindExploration))
	assert.Equal(t, 1, repo.Len(node.KindExplorationScene))
	assert.Equal(t, "uno", children(t, repo, node.KindExplorationScene, first.Root.ID)[0].Title)

	// Create-shaped resubmission always inserts
	_, err = coordinator.Upsert(ctx, author, decode(t, node.KindExploration, `{"title":"E","Scenes":[{"title":"one"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len(node.KindExploration))
	assert.Equal(t, 2, repo.Len(node.KindExplorationScene))
}

func TestUpsert_UpdateOfForeignRowIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()

	theirs := &node.Node{Kind: node.KindBook, AuthorID: 99, Order: 1, Title: "Theirs"}
	require.NoError(t, repo.Create(ctx, theirs))

	_, err := newCoordinator(repo, cascade.ModeSequential).
		Upsert(ctx, author, decode(t, node.KindBook, `{"id":`+itoa(theirs.ID)+`,"title":"Mine"}`))
	assert.True(t, apperr.IsNotFound(err))

	stored, err := repo.FindByID(ctx, node.KindBook, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", stored.Title)
}

func TestUpsert_SequentialPartialFailureKeepsPrefix(t *testing.T) {
	memory := node.NewMemoryRepository()
	repo := &failingRepository{Repository: memory, kind: node.KindChapter, after: 1}

	in := decode(t, node.KindBook, `{"title":"B","Chapters":[{"title":"C1"},{"title":"C2"},{"title":"C3"}]}`)
	_, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)

	var cascadeErr *cascade.Error
	require.ErrorAs(t, err, &cascadeErr)
	assert.False(t, cascadeErr.RolledBack)
	assert.Equal(t, node.KindChapter, cascadeErr.Kind)
	assert.Equal(t, "Chapters[1]", cascadeErr.Path)
	assert.ErrorIs(t, err, errStorage)

	require.Len(t, cascadeErr.Written, 2)
	assert.Equal(t, node.KindBook, cascadeErr.Written[0].Kind)
	assert.Equal(t, cascade.OpCreate, cascadeErr.Written[0].Op)
	assert.Equal(t, node.KindChapter, cascadeErr.Written[1].Kind)

	// Earlier writes stay in place
	assert.Equal(t, 1, memory.Len(node.KindBook))
	assert.Equal(t, 1, memory.Len(node.KindChapter))

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodePartialCascade, appError.Code)
	assert.Len(t, appError.Details, 3)
	assert.Equal(t, "failed: storage error", appError.Details[2].Message)
}

func TestUpsert_TransactionalRollsBack(t *testing.T) {
	memory := node.NewMemoryRepository()
	repo := &failingRepository{Repository: memory, kind: node.KindScene, after: 0}

	in := decode(t, node.KindSeries, `{"title":"S","Books":[{"Chapters":[{"Scenes":[{"title":"x"}]}]}]}`)
	_, err := newCoordinator(repo, cascade.ModeTransactional).Upsert(context.Background(), author, in)

	var cascadeErr *cascade.Error
	require.ErrorAs(t, err, &cascadeErr)
	assert.True(t, cascadeErr.RolledBack)
	assert.Equal(t, "Books[0].Chapters[0].Scenes[0]", cascadeErr.Path)

	for _, kind := range []node.Kind{node.KindSeries, node.KindBook, node.KindChapter, node.KindScene} {
		assert.Zero(t, memory.Len(kind), kind)
	}

	// A rolled back cascade surfaces as a plain internal error
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeInternal, appError.Code)
}

func TestUpsert_ValidationWritesNothing(t *testing.T) {
	repo := node.NewMemoryRepository()
	in := decode(t, node.KindSeries, `{"title":"S","price":-1,"Books":[{"title":"ok"},{"order":0}]}`)

	_, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"price", "Books[1].order"}, fields)
	assert.Zero(t, repo.Len(node.KindSeries))
	assert.Zero(t, repo.Len(node.KindBook))
}

func TestUpsert_ColumnOverflowWritesNothing(t *testing.T) {
	repo := node.NewMemoryRepository()
	in := decode(t, node.KindSeries, `{
		"title": "S",
		"Books": [
			{"Chapters": [{}, {"order": 3000000000}]},
			{"title": "a\u0000b", "price": 120000000000}
		]
	}`)

	_, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"Books[0].Chapters[1].order", "Books[1].title", "Books[1].price"}, fields)
	assert.Zero(t, repo.Len(node.KindSeries))
	assert.Zero(t, repo.Len(node.KindBook))
	assert.Zero(t, repo.Len(node.KindChapter))
}

func TestUpsert_RequiresAuthentication(t *testing.T) {
	_, err := newCoordinator(node.NewMemoryRepository(), cascade.ModeSequential).
		Upsert(context.Background(), sec.Anonymous(), &node.Input{Kind: node.KindSeries})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeUnauthorized, appError.Code)
}

func TestUpsert_TopLevelDescendantNeedsOwnedParent(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()
	coordinator := newCoordinator(repo, cascade.ModeSequential)

	mine := &node.Node{Kind: node.KindBook, AuthorID: authorID, Order: 1}
	require.NoError(t, repo.Create(ctx, mine))
	theirs := &node.Node{Kind: node.KindBook, AuthorID: 99, Order: 1}
	require.NoError(t, repo.Create(ctx, theirs))

	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"missing_parent", `{"title":"C"}`, false},
		{"unknown_parent", `{"title":"C","bookId":404}`, false},
		{"foreign_parent", `{"title":"C","bookId":` + itoa(theirs.ID) + `}`, false},
		{"own_parent", `{"title":"C","bookId":` + itoa(mine.ID) + `}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := coordinator.Upsert(ctx, author, decode(t, node.KindChapter, tt.body))
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, mine.ID, *result.Root.ParentID)
				return
			}

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			assert.Equal(t, "bookId", appError.Details[0].Field)
		})
	}
	assert.Equal(t, 1, repo.Len(node.KindChapter))
}

func TestUpsert_ChildAuthorMustMatch(t *testing.T) {
	repo := node.NewMemoryRepository()
	in := decode(t, node.KindWorld, `{"name":"W","authorId":1,"Characters":[{"name":"Ada","authorId":99}]}`)

	_, err := newCoordinator(repo, cascade.ModeSequential).Upsert(context.Background(), author, in)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "Characters[0].authorId", appError.Details[0].Field)
	assert.Zero(t, repo.Len(node.KindWorld))
}

func TestUpsert_StandaloneBook(t *testing.T) {
	repo := node.NewMemoryRepository()

	result, err := newCoordinator(repo, cascade.ModeTransactional).
		Upsert(context.Background(), author, decode(t, node.KindBook, `{"title":"Solo","price":3}`))
	require.NoError(t, err)

	assert.Nil(t, result.Root.ParentID)
	assert.Equal(t, 3.0, result.Root.Price)
	assert.Equal(t, "solo", result.Root.Attributes["slug"])
}
