package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	repo "github.com/javiercm/go-blog-api/internal/domain/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostService implements post CRUD with ownership-checked mutation. Posts
// are mirrored into Elasticsearch when a client is configured; listing falls
// back to SQL search otherwise.
type PostService struct {
	Posts    repo.PostRepository
	Comments repo.CommentRepository
	ES       *elasticsearch.Client
	ESIndex  string
	Logger   *logrus.Logger
}

func NewPostService(posts repo.PostRepository, comments repo.CommentRepository, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *PostService {
	return &PostService{Posts: posts, Comments: comments, ES: es, ESIndex: esIndex, Logger: logger}
}

type PostInput struct {
	Title   string
	Content string
}

func (s *PostService) Create(ctx context.Context, actorID string, in PostInput) (*entity.Post, error) {
	p := &entity.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: actorID,
		Comments: []entity.Comment{},
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

// Get returns the post with all of its comments in creation order.
func (s *PostService) Get(ctx context.Context, id int64) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comments, err := s.Comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	return p, nil
}

type ListPostsInput struct {
	Page     int
	PageSize int
	Author   string
	Search   string
}

// List pages through posts, optionally filtered by author username or free
// text. Each returned post carries its nested comments.
func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]entity.Post, int, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = defaultPageSize
	}
	if in.PageSize > maxPageSize {
		in.PageSize = maxPageSize
	}

	f := repo.PostFilter{Author: in.Author, Search: in.Search, Page: in.Page, PageSize: in.PageSize}
	if in.Search != "" && s.ES != nil && s.ESIndex != "" {
		if ids, err := s.searchPostIDs(ctx, in.Search); err == nil {
			if len(ids) == 0 {
				return []entity.Post{}, 0, nil
			}
			f.IDs = ids
			f.Search = ""
		} else if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to sql")
		}
	}

	posts, total, err := s.Posts.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	byPost, err := s.Comments.ListByPosts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []entity.Comment{}
		}
	}
	return posts, total, nil
}

// Update mutates title and content only, and only for the author. The
// ownership check runs against the stored author id before anything is
// written.
func (s *PostService) Update(ctx context.Context, id int64, actorID string, in PostInput) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, ErrForbidden
	}
	p.Title = in.Title
	p.Content = in.Content
	if err := s.Posts.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, id int64, actorID string) error {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.AuthorID != actorID {
		return ErrForbidden
	}
	if err := s.Posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.deletePostDoc(ctx, id)
	return nil
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":              p.ID,
		"title":           p.Title,
		"content":         p.Content,
		"author_username": p.AuthorUsername,
		"created_at":      p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(p.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *PostService) deletePostDoc(ctx context.Context, id int64) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// searchPostIDs runs a multi_match query over title, content and author
// username and returns the matching post ids.
func (s *PostService) searchPostIDs(ctx context.Context, q string) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content", "author_username"},
			},
		},
		"size": maxPageSize,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
