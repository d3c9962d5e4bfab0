package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
)

type productRow struct {
	ID       int64
	Name     string
	Price    int64
	ImageURL string
	Category string
}

type productList struct {
	Products []productRow
	Page     page.Page[productRow]
}

type productFormView struct {
	Action     string
	Form       productForm
	Categories []categories.Category
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	req := page.Of(number, adminPageSize, page.Order{Property: "id"})

	result, err := h.domain.Products.List(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cats, err := h.domain.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	rows := page.Map(result, func(p products.Product) productRow {
		return productRow{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL, Category: names[p.CategoryID]}
	})
	h.render(w, r, http.StatusOK, "products", view{
		Title: "Products",
		Data:  productList{Products: rows.Content, Page: rows},
	})
}

func (h *Handler) newProduct(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, "/admin/products", productForm{}, nil)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	form, err := readProductForm(r)
	if err != nil {
		h.fail(w, r, validation.New("Invalid form."))
		return
	}

	input, err := form.input()
	if err == nil {
		_, err = h.domain.Products.Create(r.Context(), input)
	}
	if err != nil {
		h.productFormError(w, r, "/admin/products", form, err)
		return
	}
	seeOther(w, r, "/admin/products")
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.domain.Products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderProductForm(w, r, http.StatusOK, fmt.Sprintf("/admin/products/%d", id), productFormFrom(product), nil)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := readProductForm(r)
	if err != nil {
		h.fail(w, r, validation.New("Invalid form."))
		return
	}

	input, err := form.input()
	if err == nil {
		_, err = h.domain.Products.Update(r.Context(), id, input)
	}
	if err != nil {
		h.productFormError(w, r, fmt.Sprintf("/admin/products/%d", id), form, err)
		return
	}
	seeOther(w, r, "/admin/products")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.domain.Products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, "/admin/products")
}

// productFormError re-renders the form for input problems. An unknown
// category is shown as a form error too since it comes from the select.
func (h *Handler) productFormError(w http.ResponseWriter, r *http.Request, action string, form productForm, err error) {
	if validation.IsError(err) || errors.Is(err, categories.ErrNotFound) {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, action, form, messages(err))
		return
	}
	h.fail(w, r, err)
}

func (h *Handler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, action string, form productForm, errs []string) {
	cats, err := h.domain.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	title := "New product"
	if action != "/admin/products" {
		title = "Edit product"
	}
	h.render(w, r, status, "product_form", view{
		Title:  title,
		Errors: errs,
		Data:   productFormView{Action: action, Form: form, Categories: cats},
	})
}

type categoryList struct {
	Categories []categories.Category
	Form       categoryForm
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	h.renderCategories(w, r, http.StatusOK, categoryForm{}, nil)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	form, err := readCategoryForm(r)
	if err != nil {
		h.fail(w, r, validation.New("Invalid form."))
		return
	}

	input, err := form.input()
	if err == nil {
		_, err = h.domain.Categories.Create(r.Context(), input)
	}
	if err != nil {
		if validation.IsError(err) {
			h.renderCategories(w, r, http.StatusUnprocessableEntity, form, messages(err))
			return
		}
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, "/admin/categories")
}

func (h *Handler) renderCategories(w http.ResponseWriter, r *http.Request, status int, form categoryForm, errs []string) {
	cats, err := h.domain.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "categories", view{
		Title:  "Categories",
		Errors: errs,
		Data:   categoryList{Categories: cats, Form: form},
	})
}

type memberList struct {
	Members []members.Member
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	h.renderMembers(w, r, http.StatusOK, nil)
}

func (h *Handler) chargeMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, validation.New("Invalid form."))
		return
	}

	amount, err := strconv.ParseInt(r.PostForm.Get("amount"), 10, 64)
	if err != nil {
		h.renderMembers(w, r, http.StatusUnprocessableEntity, []string{"Amount must be a number."})
		return
	}
	if _, err := h.domain.Members.ChargePoint(r.Context(), id, amount); err != nil {
		if validation.IsError(err) {
			h.renderMembers(w, r, http.StatusUnprocessableEntity, messages(err))
			return
		}
		h.fail(w, r, err)
		return
	}

	h.logger.Info("points charged", "member_id", id, "amount", amount)
	seeOther(w, r, "/admin/members")
}

func (h *Handler) renderMembers(w http.ResponseWriter, r *http.Request, status int, errs []string) {
	list, err := h.domain.Members.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "members", view{
		Title:  "Members",
		Errors: errs,
		Data:   memberList{Members: list},
	})
}
