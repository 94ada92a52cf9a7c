package server

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client for kin.v1.KinService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ListPersons lists the records under rootDir ("" for the server's root).
func (c *Client) ListPersons(ctx context.Context, rootDir string, opts ...grpc.CallOption) ([]PersonEntry, error) {
	req, err := newStruct(map[string]any{"root_dir": rootDir})
	if err != nil {
		return nil, err
	}
	resp, err := invoke(ctx, c.cc, methodListPersons, req, opts...)
	if err != nil {
		return nil, err
	}
	items := listField(resp, "entries")
	out := make([]PersonEntry, len(items))
	for i, it := range items {
		out[i] = personFromStruct(it)
	}
	return out, nil
}

// ShowPerson fetches one record by UUID or prefix.
func (c *Client) ShowPerson(ctx context.Context, uuid string, opts ...grpc.CallOption) (ShowResult, error) {
	req, err := newStruct(map[string]any{"uuid": uuid})
	if err != nil {
		return ShowResult{}, err
	}
	resp, err := invoke(ctx, c.cc, methodShowPerson, req, opts...)
	if err != nil {
		return ShowResult{}, err
	}
	return ShowResult{
		Person:     personFromStruct(structField(resp, "person")),
		FilePath:   stringField(resp, "file_path"),
		RawContent: stringField(resp, "raw_content"),
	}, nil
}

// CreatePerson creates a new record.
func (c *Client) CreatePerson(ctx context.Context, in CreateRequest, opts ...grpc.CallOption) (CreateResult, error) {
	req, err := newStruct(in.toMap())
	if err != nil {
		return CreateResult{}, err
	}
	resp, err := invoke(ctx, c.cc, methodCreatePerson, req, opts...)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{
		Person:   personFromStruct(structField(resp, "person")),
		FilePath: stringField(resp, "file_path"),
	}, nil
}

// Ancestors returns the ancestors of uuid between minDepth and maxDepth
// generations, nearest first. maxDepth 0 is unbounded.
func (c *Client) Ancestors(ctx context.Context, uuid string, minDepth, maxDepth int, opts ...grpc.CallOption) ([]AncestorEntry, error) {
	req, err := newStruct(map[string]any{
		"uuid":      uuid,
		"min_depth": minDepth,
		"max_depth": maxDepth,
	})
	if err != nil {
		return nil, err
	}
	resp, err := invoke(ctx, c.cc, methodAncestors, req, opts...)
	if err != nil {
		return nil, err
	}
	items := listField(resp, "ancestors")
	out := make([]AncestorEntry, len(items))
	for i, it := range items {
		out[i] = ancestorFromStruct(it)
	}
	return out, nil
}
