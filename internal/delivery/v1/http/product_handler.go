package http

import (
	"net/http"

	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// getProduct
//
//	@Summary		Получение товара
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"Идентификатор товара"
//	@Success		200	{object}	ProductRes
//	@Failure		400	{object}	ErrorResponse	"Некорректный идентификатор"
//	@Failure		404	{object}	ErrorResponse	"Товар не найден"
//	@Router			/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductRes(product))
}

// createProduct
//
//	@Summary		Создание товара
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		ProductReq	true	"Категория и название"
//	@Success		201		{object}	ProductRes
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductReq
	if err := decodeBody(w, r, &req); err != nil {
		p.writeError(w, r, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), usecase.NewCreateProductReq(req.Category, req.Name))
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewProductRes(product))
}

// updateProduct
//
//	@Summary		Полная замена товара
//	@Description	Категория и название заменяются целиком, оба поля обязательны
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int			true	"Идентификатор товара"
//	@Param			product	body		ProductReq	true	"Категория и название"
//	@Success		200		{object}	ProductRes
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Router			/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	var req ProductReq
	if err := decodeBody(w, r, &req); err != nil {
		p.writeError(w, r, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), usecase.NewUpdateProductReq(id, req.Category, req.Name))
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductRes(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Param		id	path	int	true	"Идентификатор товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listProducts
//
//	@Summary		Товары категории
//	@Description	Страница товаров, отсортированных по категории по возрастанию
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Категория"
//	@Param			page		query		int		false	"Номер страницы с нуля"	default(0)
//	@Param			size		query		int		false	"Размер страницы"		default(10)
//	@Success		200			{object}	ProductListRes
//	@Failure		400			{object}	ErrorResponse	"Некорректные параметры страницы"
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parseIntQuery(r, "page", defaultPage, e.ErrInvalidPage)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	size, err := parseIntQuery(r, "size", defaultPageSize, e.ErrInvalidPageSize)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	category := r.URL.Query().Get("category")
	res, err := p.productUsecase.ListByCategory(r.Context(), usecase.NewListByCategoryReq(category, page, size))
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductListRes(res))
}

// listCategories
//
//	@Summary	Список категорий
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	CategoriesRes
//	@Router		/products/categories [get]
func (p *ProductHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.productUsecase.ListCategories(r.Context())
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CategoriesRes{Categories: categories})
}

func (p *ProductHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "%s %s", r.Method, r.URL.Path)
	} else {
		p.logger.Warnf("%d %s %s: %s", code, r.Method, r.URL.Path, err.Error())
	}

	WriteError(w, err)
}
