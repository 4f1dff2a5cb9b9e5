package uniqode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Widget link url_type for PDF entries; part of the wire contract.
const pdfURLType = 10

// Linkpage is the read-mostly snapshot of a vendor linkpage.
type Linkpage struct {
	ID  int64
	URL string
}

// WidgetLink describes one link entry attached to a linkpage.
type WidgetLink struct {
	ID      int64
	URLType int64
	PDFURL  string
	Title   string
}

// CreateLinkpage creates a new linkpage and returns its id and public URL.
//
// POST /linkpage/ expects 201.
func (c *Client) CreateLinkpage(ctx context.Context, name string) (Linkpage, Result, error) {
	const step = "1-create-linkpage"
	payload := map[string]any{
		"name":         name,
		"organization": c.org,
	}
	result, err := c.doJSON(ctx, step, "create linkpage", http.MethodPost, c.endpoint("linkpage/"), payload, http.StatusCreated)
	if err != nil {
		return Linkpage{}, Result{}, err
	}
	id, err := requireIntField(step, "create linkpage", result.Body, "id")
	if err != nil {
		return Linkpage{}, result, err
	}
	return Linkpage{ID: id, URL: stringField(result.Body, "url")}, result, nil
}

// AddWidgetRequest describes the PDF widget attached at step 5.
type AddWidgetRequest struct {
	Linkpage Linkpage
	PDFURL   string
	PDFName  string
	Title    string
}

// AddPDFWidget attaches a PDF link (url_type=10) to the linkpage, then
// re-fetches the linkpage because the PUT response may omit the links list.
//
// PUT /linkpage/{id}/?organization={org} expects 200.
func (c *Client) AddPDFWidget(ctx context.Context, req AddWidgetRequest) ([]WidgetLink, Result, error) {
	const step = "5-add-pdf-to-linkpage"
	title := req.Title
	if title == "" {
		title = req.PDFName
	}
	payload := map[string]any{
		"links": []map[string]any{
			{
				"url_type":   pdfURLType,
				"deleted":    false,
				"url":        "",
				"title":      title,
				"image_type": 1,
				"image_url":  "",
				"field_data": map[string]any{
					"pdf_url":  req.PDFURL,
					"pdf_name": req.PDFName,
				},
			},
		},
		"url":          req.Linkpage.URL,
		"organization": c.org,
	}
	endpoint := c.linkpageEndpoint(req.Linkpage.ID)
	result, err := c.doJSON(ctx, step, "add pdf widget", http.MethodPut, endpoint, payload, http.StatusOK)
	if err != nil {
		return nil, Result{}, err
	}

	// The PUT response may not include links; re-fetch to resolve link ids.
	fetched, err := c.doJSON(ctx, step, "fetch linkpage links", http.MethodGet, endpoint, nil, http.StatusOK)
	if err == nil {
		result = Result{Status: result.Status, Body: fetched.Body}
	}
	return decodeWidgetLinks(result.Body), result, nil
}

// DeleteWidgets removes the given link ids from the linkpage and returns the
// remaining links.
//
// PUT /linkpage/{id}/?organization={org} expects 200.
func (c *Client) DeleteWidgets(ctx context.Context, page Linkpage, linkIDs []int64) ([]WidgetLink, Result, error) {
	const step = "6-delete-pdf-from-linkpage"
	payload := map[string]any{
		"deleted_links": linkIDs,
		"links":         []map[string]any{},
		"url":           page.URL,
		"organization":  c.org,
	}
	result, err := c.doJSON(ctx, step, "delete pdf widgets", http.MethodPut, c.linkpageEndpoint(page.ID), payload, http.StatusOK)
	if err != nil {
		return nil, Result{}, err
	}
	return decodeWidgetLinks(result.Body), result, nil
}

func (c *Client) linkpageEndpoint(id int64) *url.URL {
	endpoint := c.endpoint(fmt.Sprintf("linkpage/%d/", id))
	query := url.Values{}
	query.Set("organization", strconv.FormatInt(c.org, 10))
	endpoint.RawQuery = query.Encode()
	return endpoint
}

func decodeWidgetLinks(body map[string]any) []WidgetLink {
	raw, ok := body["links"].([]any)
	if !ok {
		return nil
	}
	links := make([]WidgetLink, 0, len(raw))
	for _, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		link := WidgetLink{Title: stringField(fields, "title")}
		if id, ok := intField(fields, "id"); ok {
			link.ID = id
		}
		if urlType, ok := intField(fields, "url_type"); ok {
			link.URLType = urlType
		}
		if fieldData, ok := fields["field_data"].(map[string]any); ok {
			link.PDFURL = stringField(fieldData, "pdf_url")
		}
		links = append(links, link)
	}
	return links
}
