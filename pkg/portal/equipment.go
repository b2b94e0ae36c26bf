package portal

import (
	"context"
	"strconv"
)

func (c *Client) CreateMachine(ctx context.Context, in MachineInput) (MachineRecord, error) {
	var out MachineRecord
	err := c.postJSON(ctx, "create machine", c.apipath("machines/"), in, &out)
	return out, err
}

func (c *Client) LinkMachine(ctx context.Context, experienceID int64, in MachineLink) (Link, error) {
	var out Link
	err := c.postJSON(ctx, "link machine", c.linkPath(experienceID, "machines"), in, &out)
	return out, err
}

func (c *Client) CreateDetector(ctx context.Context, in DetectorInput) (DetectorRecord, error) {
	var out DetectorRecord
	err := c.postJSON(ctx, "create detector", c.apipath("detectors/"), in, &out)
	return out, err
}

func (c *Client) LinkDetector(ctx context.Context, experienceID int64, in DetectorLink) (Link, error) {
	var out Link
	err := c.postJSON(ctx, "link detector", c.linkPath(experienceID, "detectors"), in, &out)
	return out, err
}

func (c *Client) CreatePhantom(ctx context.Context, in PhantomInput) (PhantomRecord, error) {
	var out PhantomRecord
	err := c.postJSON(ctx, "create phantom", c.apipath("phantoms/"), in, &out)
	return out, err
}

func (c *Client) LinkPhantom(ctx context.Context, experienceID int64, in PhantomLink) (Link, error) {
	var out Link
	err := c.postJSON(ctx, "link phantom", c.linkPath(experienceID, "phantoms"), in, &out)
	return out, err
}

func (c *Client) linkPath(experienceID int64, kind string) string {
	return c.apipath("experiences", strconv.FormatInt(experienceID, 10), kind)
}
