package middlewares

import (
	"context"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type customerReader struct {
	db *gorm.DB
}

func (r *customerReader) getCustomers(ctx context.Context, ids []int) []*dataloader.Result[*models.Customer] {
	var results []models.Customer
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Customer](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	loaders := For(ctx)
	return loaders.customerLoader.Load(ctx, id)()
}

func GetCustomers(ctx context.Context, ids []int) ([]*models.Customer, []error) {
	loaders := For(ctx)
	return loaders.customerLoader.LoadMany(ctx, ids)()
}

func GetCustomerMap(ctx context.Context, ids []int) (map[int]*models.Customer, error) {
	return loadMap(GetCustomers(ctx, ids))
}
