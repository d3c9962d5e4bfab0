package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/domain/validation"
)

var formValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("label")
	})
	return v
}()

// checkForm runs tag validation and returns every message, in field order.
func checkForm(form any) []string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required.")
		case "number":
			msgs = append(msgs, fe.Field()+" must be a number.")
		default:
			msgs = append(msgs, fe.Field()+" is invalid.")
		}
	}
	return msgs
}

// productForm keeps the raw values so they can be re-rendered as typed.
type productForm struct {
	Name       string `label:"Product name"`
	Price      string `label:"Product price" validate:"required,number"`
	ImageURL   string `label:"Product image URL"`
	CategoryID string `label:"Category" validate:"required,number"`
}

func readProductForm(r *http.Request) (productForm, error) {
	if err := r.ParseForm(); err != nil {
		return productForm{}, fmt.Errorf("parse form: %w", err)
	}
	return productForm{
		Name:       r.PostForm.Get("name"),
		Price:      strings.TrimSpace(r.PostForm.Get("price")),
		ImageURL:   r.PostForm.Get("imageUrl"),
		CategoryID: strings.TrimSpace(r.PostForm.Get("categoryId")),
	}, nil
}

func productFormFrom(p products.Product) productForm {
	return productForm{
		Name:       p.Name,
		Price:      strconv.FormatInt(p.Price, 10),
		ImageURL:   p.ImageURL,
		CategoryID: strconv.FormatInt(p.CategoryID, 10),
	}
}

// input converts the form. Name rules are left to the product service.
func (f productForm) input() (products.Input, error) {
	if msgs := checkForm(f); len(msgs) > 0 {
		return products.Input{}, validation.New(msgs...)
	}
	price, err := strconv.ParseInt(f.Price, 10, 64)
	if err != nil {
		return products.Input{}, validation.New("Product price must be a number.")
	}
	categoryID, err := strconv.ParseInt(f.CategoryID, 10, 64)
	if err != nil {
		return products.Input{}, validation.New("Category must be a number.")
	}
	return products.Input{
		Name:       f.Name,
		Price:      price,
		ImageURL:   f.ImageURL,
		CategoryID: categoryID,
	}, nil
}

type categoryForm struct {
	Name        string `label:"Category name" validate:"required"`
	Color       string `label:"Category color" validate:"required"`
	ImageURL    string `label:"Category image URL" validate:"required"`
	Description string `label:"Description"`
}

func readCategoryForm(r *http.Request) (categoryForm, error) {
	if err := r.ParseForm(); err != nil {
		return categoryForm{}, fmt.Errorf("parse form: %w", err)
	}
	return categoryForm{
		Name:        strings.TrimSpace(r.PostForm.Get("name")),
		Color:       strings.TrimSpace(r.PostForm.Get("color")),
		ImageURL:    strings.TrimSpace(r.PostForm.Get("imageUrl")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
	}, nil
}

func (f categoryForm) input() (categories.Input, error) {
	if msgs := checkForm(f); len(msgs) > 0 {
		return categories.Input{}, validation.New(msgs...)
	}
	return categories.Input{
		Name:        f.Name,
		Color:       f.Color,
		ImageURL:    f.ImageURL,
		Description: f.Description,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, products.ErrNotFound) ||
		errors.Is(err, categories.ErrNotFound) ||
		errors.Is(err, members.ErrNotFound) ||
		errors.Is(err, options.ErrNotFound)
}
