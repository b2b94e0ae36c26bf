package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
)

var errNoFile = errors.New("portal: dataset file is required")

// UploadDataset sends the dataset file and its metadata for an experience.
func (c *Client) UploadDataset(ctx context.Context, experienceID int64, in DatasetUpload) (DataRecord, error) {
	var out DataRecord
	target := c.apipath("donnees", "upload", strconv.FormatInt(experienceID, 10))
	err := c.postMultipart(ctx, "upload dataset", target, func(mw *multipart.Writer) error {
		if err := writeFile(mw, in.File); err != nil {
			return err
		}
		if err := writeField(mw, "data_type", in.DataType, true); err != nil {
			return err
		}
		if err := writeField(mw, "unit", in.Unit, false); err != nil {
			return err
		}
		if err := writeField(mw, "description", in.Description, false); err != nil {
			return err
		}
		return writeColumns(mw, in.Columns)
	}, &out)
	return out, err
}

// SubmitComplete creates article, experience, equipment links and dataset in
// a single request that the backend applies transactionally.
func (c *Client) SubmitComplete(ctx context.Context, in CompleteSubmission) (CompleteResult, error) {
	var out CompleteResult
	err := c.postMultipart(ctx, "submit complete", c.apipath("complete", "submit"), func(mw *multipart.Writer) error {
		if err := writeField(mw, "title", in.Article.Title, true); err != nil {
			return err
		}
		if err := writeField(mw, "authors", in.Article.Authors, true); err != nil {
			return err
		}
		if err := writeField(mw, "doi", in.Article.DOI, false); err != nil {
			return err
		}
		return writeExperience(mw, in.ExperienceSubmission)
	}, &out)
	return out, err
}

// SubmitExperience attaches a complete experience to an existing article in a
// single request.
func (c *Client) SubmitExperience(ctx context.Context, articleID int64, in ExperienceSubmission) (CompleteResult, error) {
	var out CompleteResult
	target := c.apipath("complete", "submit-experience", strconv.FormatInt(articleID, 10))
	err := c.postMultipart(ctx, "submit experience", target, func(mw *multipart.Writer) error {
		return writeExperience(mw, in)
	}, &out)
	if err == nil && out.ArticleID == 0 {
		out.ArticleID = articleID
	}
	return out, err
}

func writeExperience(mw *multipart.Writer, in ExperienceSubmission) error {
	if err := writeField(mw, "experience_description", in.Description, true); err != nil {
		return err
	}
	if err := writeJSONField(mw, "machines", nonNil(in.Machines)); err != nil {
		return err
	}
	if err := writeJSONField(mw, "detectors", nonNil(in.Detectors)); err != nil {
		return err
	}
	if err := writeJSONField(mw, "phantoms", nonNil(in.Phantoms)); err != nil {
		return err
	}
	if err := writeFile(mw, in.File); err != nil {
		return err
	}
	if err := writeField(mw, "data_type", in.DataType, true); err != nil {
		return err
	}
	if err := writeField(mw, "unit", in.Unit, false); err != nil {
		return err
	}
	if err := writeField(mw, "data_description", in.DataDescription, false); err != nil {
		return err
	}
	return writeColumns(mw, in.Columns)
}

func writeField(mw *multipart.Writer, name, value string, required bool) error {
	if !required && strings.TrimSpace(value) == "" {
		return nil
	}
	return mw.WriteField(name, value)
}

func writeJSONField(mw *multipart.Writer, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return mw.WriteField(name, string(data))
}

func writeColumns[T any](mw *multipart.Writer, columns []T) error {
	if len(columns) == 0 {
		return nil
	}
	return writeJSONField(mw, "columnMapping", columns)
}

func writeFile(mw *multipart.Writer, file FileSource) error {
	if file == nil {
		return errNoFile
	}
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer rc.Close()

	part, err := mw.CreateFormFile("file", file.Filename())
	if err != nil {
		return err
	}
	_, err = io.Copy(part, rc)
	return err
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
