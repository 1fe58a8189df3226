package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"sharebite/internal/domain"
)

// ListPosts returns every post the server knows about, whatever its status.
func (c *Client) ListPosts(ctx context.Context) ([]domain.FoodPost, error) {
	var posts []domain.FoodPost
	if err := c.do(ctx, http.MethodGet, "/food/posts", nil, &posts, defaultMapping); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) ListMyPosts(ctx context.Context) ([]domain.FoodPost, error) {
	var posts []domain.FoodPost
	if err := c.do(ctx, http.MethodGet, "/food/my-posts", nil, &posts, defaultMapping); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) ListMyClaims(ctx context.Context) ([]domain.FoodPost, error) {
	var posts []domain.FoodPost
	if err := c.do(ctx, http.MethodGet, "/food/my-claims", nil, &posts, defaultMapping); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, post *domain.FoodPost) (*domain.FoodPost, error) {
	var created domain.FoodPost
	if err := c.do(ctx, http.MethodPost, "/food/posts", post, &created, defaultMapping); err != nil {
		return nil, err
	}
	return &created, nil
}

// ClaimPost asks the server to assign the post to the caller. Any rejection
// is reported as a failed claim.
func (c *Client) ClaimPost(ctx context.Context, postID int32) (*domain.FoodPost, error) {
	var post domain.FoodPost
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/food/posts/%d/claim", postID), nil, &post, claimMapping); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePostStatus(ctx context.Context, postID int32, status domain.FoodStatus) (*domain.FoodPost, error) {
	var post domain.FoodPost
	body := map[string]domain.FoodStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/food/posts/%d", postID), body, &post, lifecycleMapping); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int32) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/food/posts/%d", postID), nil, nil, lifecycleMapping)
}
