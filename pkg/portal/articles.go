package portal

import (
	"context"
	"strconv"
)

// CreateArticle posts a new article and returns the stored record.
func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (Article, error) {
	var out Article
	err := c.postJSON(ctx, "create article", c.apipath("articles/"), in, &out)
	return out, err
}

// ListArticles returns every article known to the backend.
func (c *Client) ListArticles(ctx context.Context) ([]Article, error) {
	var out []Article
	err := c.getJSON(ctx, "list articles", c.apipath("articles/"), &out)
	return out, err
}

// GetArticle fetches one article.
func (c *Client) GetArticle(ctx context.Context, id int64) (Article, error) {
	var out Article
	err := c.getJSON(ctx, "get article", c.apipath("articles", strconv.FormatInt(id, 10)), &out)
	return out, err
}

// ListArticleExperiences fetches the experience summaries attached to an
// article.
func (c *Client) ListArticleExperiences(ctx context.Context, id int64) (ArticleExperiences, error) {
	var out ArticleExperiences
	err := c.getJSON(ctx, "list article experiences",
		c.apipath("articles", strconv.FormatInt(id, 10), "experiences"), &out)
	return out, err
}

// CreateExperience posts an experience, optionally attached to an article.
func (c *Client) CreateExperience(ctx context.Context, in ExperienceInput) (Experience, error) {
	var out Experience
	err := c.postJSON(ctx, "create experience", c.apipath("experiences/"), in, &out)
	return out, err
}

// Health reports the backend status.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.getJSON(ctx, "health", c.apipath("health"), &out)
	return out, err
}
