package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// maxUploadMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const maxUploadMemory = 8 << 20

type ItemController struct {
	items *services.ItemService
}

func NewItemController(items *services.ItemService) *ItemController {
	return &ItemController{items: items}
}

// Index handles GET /items.
func (ic *ItemController) Index(c *ctx.Context) {
	items, err := ic.items.List(c.Context(), services.CatalogParamsFrom(c.R.URL.Query()))
	if err != nil {
		c.Fail(err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	c.OK(items)
}

// Store handles POST /items.
func (ic *ItemController) Store(c *ctx.Context) {
	var it models.Item
	if !c.BindJSON(&it) {
		return
	}

	created, err := ic.items.Create(c.Context(), &it)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.M{"msg": "item created", "item": created})
}

// Show handles GET /items/{id}.
func (ic *ItemController) Show(c *ctx.Context) {
	it, err := ic.items.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(it)
}

// Update handles PUT /items/{id}. Only the fields present in the body change.
func (ic *ItemController) Update(c *ctx.Context) {
	var p models.ItemPatch
	if !c.DecodeJSON(&p) {
		return
	}

	it, err := ic.items.Update(c.Context(), c.Param("id"), &p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.M{"msg": "item updated", "item": it})
}

// Destroy handles DELETE /items/{id}.
func (ic *ItemController) Destroy(c *ctx.Context) {
	if err := ic.items.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Msg(http.StatusOK, "item deleted")
}

// Categories handles GET /items/categories.
func (ic *ItemController) Categories(c *ctx.Context) {
	cats, err := ic.items.Categories(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.OK(cats)
}

// UploadImage handles POST /items/{id}/image with a multipart "image" file.
func (ic *ItemController) UploadImage(c *ctx.Context) {
	if err := c.R.ParseMultipartForm(maxUploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		c.Error(http.StatusBadRequest, "expected a multipart form with an image file")
		return
	}

	file, hdr, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := file.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, 0); err != nil {
			c.Fail(err)
			return
		}
	}

	it, err := ic.items.AttachImage(c.Context(), c.Param("id"), hdr.Filename, contentType, file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.M{"msg": "image uploaded", "item": it})
}
