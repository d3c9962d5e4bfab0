package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/domain"
	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/httpapi"
	"github.com/nextstep/gift/internal/storage/memory"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

type fakeKakao struct {
	email string
}

func (f fakeKakao) AuthorizeURL(state string) string {
	return "https://kauth.example.com/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f fakeKakao) ExchangeCode(_ context.Context, code string) (string, error) {
	return "kakao-" + code, nil
}

func (f fakeKakao) FetchEmail(context.Context, string) (string, error) {
	return f.email, nil
}

type fixture struct {
	t       *testing.T
	router  http.Handler
	c       domain.Container
	product products.Product
	option  options.Option
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := domain.New(memory.NewDomainOptions())
	tokens, err := auth.NewProvider(testSecret, "gift", time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	httpapi.Register(r, httpapi.Deps{
		Logger:   logger,
		Domain:   c,
		Auth:     auth.NewService(c.Members, tokens),
		Resolver: auth.NewResolver(tokens, c.Members, logger),
		Kakao:    fakeKakao{email: "kakao@test.com"},
	})

	category, err := c.Categories.Create(ctx, categories.Input{Name: "교환권", Color: "#6c95d1", ImageURL: "https://img.test/c.png"})
	require.NoError(t, err)
	product, err := c.Products.Create(ctx, products.Input{Name: "아메리카노", Price: 4500, ImageURL: "https://img.test/p.png", CategoryID: category.ID})
	require.NoError(t, err)
	option, err := c.Options.Create(ctx, product.ID, options.Input{Name: "Tall", Quantity: 10})
	require.NoError(t, err)

	return &fixture{t: t, router: r, c: c, product: product, option: option}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) register(email string) string {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/members/register", "", map[string]string{"email": email, "password": "password"})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(f.t, rec, &resp)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	token := f.register("a@test.com")
	assert.NotEmpty(t, token)

	rec := f.do(http.MethodPost, "/api/members/register", "", map[string]string{"email": "a@test.com", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is already registered.", message(t, rec))

	rec = f.do(http.MethodPost, "/api/members/login", "", map[string]string{"email": "a@test.com", "password": "password"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/members/login", "", map[string]string{"email": "a@test.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email or password.", message(t, rec))

	rec = f.do(http.MethodPost, "/api/members/login", "", map[string]string{"email": "nobody@test.com", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email or password.", message(t, rec))
}

func TestRegisterValidatesPayload(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/members/register", "", map[string]string{"email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "email")

	rec = f.do(http.MethodPost, "/api/members/register", "", map[string]string{"email": "b@test.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "password is required")
}

func TestCategoryCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = f.do(http.MethodPost, "/api/categories", "", map[string]string{"name": "신규카테고리", "color": "#00FF00", "imageUrl": "https://img.test/n.png"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "신규카테고리", created.Name)

	rec = f.do(http.MethodPost, "/api/categories", "", map[string]string{"name": "", "color": "#00FF00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/categories/" + strconv.FormatInt(created.ID, 10)
	rec = f.do(http.MethodPut, path, "", map[string]string{"name": "수정됨", "color": "#0000FF", "imageUrl": "https://img.test/n.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &created)
	assert.Equal(t, "#0000FF", created.Color)

	rec = f.do(http.MethodPut, "/api/categories/999", "", map[string]string{"name": "x", "color": "#000", "imageUrl": "u"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodDelete, "/api/categories/"+strconv.FormatInt(f.product.CategoryID, 10), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category still has products.", message(t, rec))
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/products?page=0&size=5&sort=name,desc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pageBody struct {
		Content       []map[string]any `json:"content"`
		TotalElements int64            `json:"totalElements"`
		First         bool             `json:"first"`
	}
	decode(t, rec, &pageBody)
	assert.Len(t, pageBody.Content, 1)
	assert.EqualValues(t, 1, pageBody.TotalElements)
	assert.True(t, pageBody.First)

	rec = f.do(http.MethodGet, "/api/products?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/products?page=92233720368547759&size=100", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &pageBody)
	assert.Empty(t, pageBody.Content)

	rec = f.do(http.MethodGet, "/api/products/"+strconv.FormatInt(f.product.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var product struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	}
	decode(t, rec, &product)
	assert.Equal(t, "아메리카노", product.Name)
	assert.EqualValues(t, 4500, product.Price)

	rec = f.do(http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found.", message(t, rec))

	body := map[string]any{"name": "새상품", "price": 50000, "imageUrl": "https://img.test/x.png", "categoryId": f.product.CategoryID}
	rec = f.do(http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	body["price"] = int64(products.MaxPrice) + 1
	rec = f.do(http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body["price"] = 50000

	body["name"] = "카카오 선물"
	rec = f.do(http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body["name"] = "이름이 너무 길어서 열다섯 글자를 넘는 상품"
	rec = f.do(http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body["name"] = "상품"
	body["categoryId"] = 999
	rec = f.do(http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/api/products/999", "", map[string]any{"name": "수정상품", "price": 20000, "imageUrl": "u", "categoryId": f.product.CategoryID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/api/products/"+strconv.FormatInt(f.product.ID, 10), "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := f.c.Options.Get(context.Background(), f.option.ID)
	assert.ErrorIs(t, err, options.ErrNotFound)
}

func TestOptionEndpoints(t *testing.T) {
	f := newFixture(t)
	base := "/api/products/" + strconv.FormatInt(f.product.ID, 10) + "/options"

	rec := f.do(http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/products/999/options", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// last option cannot be removed
	rec = f.do(http.MethodDelete, base+"/"+strconv.FormatInt(f.option.ID, 10), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete the last option of a product.", message(t, rec))

	rec = f.do(http.MethodPost, base, "", map[string]any{"name": "새옵션", "quantity": 100})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID       int64 `json:"id"`
		Quantity int64 `json:"quantity"`
	}
	decode(t, rec, &created)
	assert.EqualValues(t, 100, created.Quantity)
	assert.Equal(t, base+"/"+strconv.FormatInt(created.ID, 10), rec.Header().Get("Location"))

	rec = f.do(http.MethodPost, base, "", map[string]any{"name": "새옵션", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Option name already exists.", message(t, rec))

	rec = f.do(http.MethodPost, base, "", map[string]any{"name": "bad*name", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/products/999/options", "", map[string]any{"name": "옵션", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, base+"/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, base+"/"+strconv.FormatInt(created.ID, 10), "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWishesRequireAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/wishes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/wishes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWishLifecycle(t *testing.T) {
	f := newFixture(t)
	owner := f.register("owner@test.com")
	other := f.register("other@test.com")

	body := map[string]any{"productId": f.product.ID}
	rec := f.do(http.MethodPost, "/api/wishes", owner, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var wish struct {
		ID        int64  `json:"id"`
		ProductID int64  `json:"productId"`
		Name      string `json:"name"`
	}
	decode(t, rec, &wish)
	assert.Equal(t, f.product.ID, wish.ProductID)
	assert.Equal(t, "아메리카노", wish.Name)
	assert.Equal(t, "/api/wishes/"+strconv.FormatInt(wish.ID, 10), rec.Header().Get("Location"))

	rec = f.do(http.MethodPost, "/api/wishes", owner, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/wishes", owner, map[string]any{"productId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/wishes", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Content []map[string]any `json:"content"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Content, 1)

	path := "/api/wishes/" + strconv.FormatInt(wish.ID, 10)
	rec = f.do(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.register("buyer@test.com")
	buyer, err := f.c.Members.FindByEmail(ctx, "buyer@test.com")
	require.NoError(t, err)
	_, err = f.c.Members.ChargePoint(ctx, buyer.ID, 10000)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/orders", token, map[string]any{"optionId": f.option.ID, "quantity": 2, "message": "선물입니다"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		ID            int64  `json:"id"`
		OptionID      int64  `json:"optionId"`
		Quantity      int64  `json:"quantity"`
		Message       string `json:"message"`
		OrderDateTime string `json:"orderDateTime"`
	}
	decode(t, rec, &order)
	assert.Equal(t, f.option.ID, order.OptionID)
	assert.EqualValues(t, 2, order.Quantity)
	assert.Equal(t, "선물입니다", order.Message)
	assert.NotEmpty(t, order.OrderDateTime)
	assert.Equal(t, "/api/orders/"+strconv.FormatInt(order.ID, 10), rec.Header().Get("Location"))

	option, err := f.c.Options.Get(ctx, f.option.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, option.Quantity)
	buyer, err = f.c.Members.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, buyer.Point)

	// anonymous orders are rejected
	rec = f.do(http.MethodPost, "/api/orders", "", map[string]any{"optionId": f.option.ID, "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/orders", token, map[string]any{"optionId": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/orders", token, map[string]any{"optionId": f.option.ID, "quantity": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock.", message(t, rec))

	rec = f.do(http.MethodPost, "/api/orders", token, map[string]any{"optionId": f.option.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient points.", message(t, rec))
	option, err = f.c.Options.Get(ctx, f.option.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, option.Quantity, "stock restored after failed payment")

	rec = f.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Content []map[string]any `json:"content"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Content, 1)
}

func TestOrderWithoutMessageOmitsField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.register("quiet@test.com")
	buyer, err := f.c.Members.FindByEmail(ctx, "quiet@test.com")
	require.NoError(t, err)
	_, err = f.c.Members.ChargePoint(ctx, buyer.ID, 4500)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/orders", token, map[string]any{"optionId": f.option.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	var raw map[string]any
	decode(t, rec, &raw)
	assert.NotContains(t, raw, "message")
}

func TestKakaoLoginFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/auth/kakao/login", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	state := cookies[0].Value
	assert.Contains(t, rec.Header().Get("Location"), "state="+state)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/kakao/callback?code=abc&state="+state, nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	member, err := f.c.Members.FindByEmail(context.Background(), "kakao@test.com")
	require.NoError(t, err)
	assert.Equal(t, "kakao-abc", member.KakaoAccessToken)
	assert.False(t, member.HasPassword())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	rec = f.do(http.MethodGet, "/api/wishes", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKakaoCallbackRejectsStateMismatch(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/kakao/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "kakao_oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid OAuth state.", message(t, rec))
}
