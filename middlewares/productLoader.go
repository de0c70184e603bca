package middlewares

import (
	"context"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type productReader struct {
	db *gorm.DB
}

func (r *productReader) getProducts(ctx context.Context, ids []int) []*dataloader.Result[*models.Product] {
	var results []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Product](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetProduct(ctx context.Context, id int) (*models.Product, error) {
	loaders := For(ctx)
	return loaders.productLoader.Load(ctx, id)()
}

func GetProducts(ctx context.Context, ids []int) ([]*models.Product, []error) {
	loaders := For(ctx)
	return loaders.productLoader.LoadMany(ctx, ids)()
}

func GetProductMap(ctx context.Context, ids []int) (map[int]*models.Product, error) {
	return loadMap(GetProducts(ctx, ids))
}
