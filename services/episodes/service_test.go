package episodes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgjkuat/techdigest/internal/testdb"
	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/utils"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(testdb.New(t))
}

func mustCreate(t *testing.T, s *Service, number int, title string) *models.Episode {
	t.Helper()
	ep, err := s.Create(context.Background(), CreateInput{EpisodeNumber: number, Title: title, Content: "body of " + title})
	require.NoError(t, err)
	return ep
}

func strPtr(s string) *string { return &s }

func TestCreate_DuplicateNumberConflicts(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	first := mustCreate(t, s, 1, "Intro")
	assert.Equal(t, 0, first.LikeCount)

	_, err := s.Create(ctx, CreateInput{EpisodeNumber: 1, Title: "Other", Content: "other"})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Intro", got.Title)
	assert.Equal(t, "body of Intro", got.Content)
}

func TestCreate_Validation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	cases := []CreateInput{
		{EpisodeNumber: 0, Title: "t", Content: "c"},
		{EpisodeNumber: 1, Title: " ", Content: "c"},
		{EpisodeNumber: 1, Title: strings.Repeat("x", 256), Content: "c"},
		{EpisodeNumber: 1, Title: "t", Content: ""},
	}
	for _, in := range cases {
		_, err := s.Create(ctx, in)
		assert.Equal(t, utils.KindBadRequest, utils.KindOf(err), "%+v", in)
	}
}

func TestLike_CountsEveryCall(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 3, "Likes")

	for i := 1; i <= 5; i++ {
		ep, err := s.Like(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, i, ep.LikeCount)
	}

	_, err := s.Like(ctx, 99)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestAddComment(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 1, "Intro")

	c, err := s.AddComment(ctx, 1, "nice")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.CommentText)
	assert.NotEmpty(t, c.RandomName)

	_, err = s.AddComment(ctx, 1, "  ")
	assert.Equal(t, utils.KindBadRequest, utils.KindOf(err))

	_, err = s.AddComment(ctx, 1, strings.Repeat("y", 1001))
	assert.Equal(t, utils.KindBadRequest, utils.KindOf(err))

	ep, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ep.Comments, 1)
	assert.Equal(t, c.RandomName, ep.Comments[0].RandomName)
}

func TestAddComment_StoresTextAsTyped(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 1, "Intro")

	for _, text := range []string{"don't stop", "Tom & Jerry", "I <3 this", strings.Repeat("&", 1000)} {
		c, err := s.AddComment(ctx, 1, text)
		require.NoError(t, err, text)
		assert.Equal(t, text, c.CommentText)
	}

	c, err := s.AddComment(ctx, 1, "<b>bold</b> move")
	require.NoError(t, err)
	assert.Equal(t, "bold move", c.CommentText)

	ep, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", ep.Comments[1].CommentText)
}

func TestAddComment_MissingEpisodeCreatesNothing(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.AddComment(ctx, 42, "hello")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestList_OrderAndPaging(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for n := 1; n <= 4; n++ {
		mustCreate(t, s, n, "Episode")
	}

	list, err := s.List(ctx, 0, DefaultLimit)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, []int{4, 3, 2, 1}, []int{list[0].EpisodeNumber, list[1].EpisodeNumber, list[2].EpisodeNumber, list[3].EpisodeNumber})

	page, err := s.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].EpisodeNumber)
	assert.Equal(t, 2, page[1].EpisodeNumber)

	_, err = s.List(ctx, -1, 10)
	assert.Equal(t, utils.KindBadRequest, utils.KindOf(err))
	_, err = s.List(ctx, 0, 0)
	assert.Equal(t, utils.KindBadRequest, utils.KindOf(err))
	_, err = s.List(ctx, 0, MaxLimit+1)
	assert.Equal(t, utils.KindBadRequest, utils.KindOf(err))
}

func TestUpdate_OnlyPresentFields(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, CreateInput{EpisodeNumber: 7, Title: "Old", Content: "keep me", ImageURL: strPtr("https://img.example/a.png")})
	require.NoError(t, err)

	ep, err := s.Update(ctx, 7, UpdateInput{Title: strPtr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", ep.Title)
	assert.Equal(t, "keep me", ep.Content)
	require.NotNil(t, ep.ImageURL)
	assert.Equal(t, "https://img.example/a.png", *ep.ImageURL)
	assert.Equal(t, 7, ep.EpisodeNumber)

	ep, err = s.Update(ctx, 7, UpdateInput{ImageURL: utils.Some("")})
	require.NoError(t, err)
	assert.Nil(t, ep.ImageURL)

	ep, err = s.Update(ctx, 7, UpdateInput{ImageURL: utils.Some("https://img.example/b.png")})
	require.NoError(t, err)
	require.NotNil(t, ep.ImageURL)

	ep, err = s.Update(ctx, 7, UpdateInput{ImageURL: utils.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, ep.ImageURL)
	assert.Equal(t, "New", ep.Title)

	_, err = s.Update(ctx, 8, UpdateInput{Title: strPtr("x")})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestDelete_RemovesComments(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	ep := mustCreate(t, s, 1, "Intro")
	for i := 0; i < 3; i++ {
		_, err := s.AddComment(ctx, 1, "comment")
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, 1))

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Where("episode_id = ?", ep.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err := s.Get(ctx, 1)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	assert.Equal(t, utils.KindNotFound, utils.KindOf(s.Delete(ctx, 1)))
}

func TestDeleteComment_ScopedToEpisode(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	first := mustCreate(t, s, 1, "One")
	mustCreate(t, s, 2, "Two")

	c, err := s.AddComment(ctx, 1, "on one")
	require.NoError(t, err)

	_, err = s.DeleteComment(ctx, 2, c.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = s.DeleteComment(ctx, 5, c.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	episodeID, err := s.DeleteComment(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, episodeID)

	_, err = s.DeleteComment(ctx, 1, c.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestCount(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	mustCreate(t, s, 1, "One")
	_, err := s.AddComment(ctx, 1, "hi")
	require.NoError(t, err)
	_, err = s.Like(ctx, 1)
	require.NoError(t, err)
	_, err = s.Like(ctx, 1)
	require.NoError(t, err)

	episodes, comments, likes, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), episodes)
	assert.Equal(t, int64(1), comments)
	assert.Equal(t, int64(2), likes)
}
