package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	productLoader  *dataloader.Loader[int, *models.Product]
	toolLoader     *dataloader.Loader[int, *models.Tool]
	customerLoader *dataloader.Loader[int, *models.Customer]
	employeeLoader *dataloader.Loader[int, *models.Employee]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	productReader := &productReader{db: conn}
	toolReader := &toolReader{db: conn}
	customerReader := &customerReader{db: conn}
	employeeReader := &employeeReader{db: conn}

	return &Loaders{
		productLoader:  dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[int, *models.Product](time.Millisecond)),
		toolLoader:     dataloader.NewBatchedLoader(toolReader.getTools, dataloader.WithWait[int, *models.Tool](time.Millisecond)),
		customerLoader: dataloader.NewBatchedLoader(customerReader.getCustomers, dataloader.WithWait[int, *models.Customer](time.Millisecond)),
		employeeLoader: dataloader.NewBatchedLoader(employeeReader.getEmployees, dataloader.WithWait[int, *models.Employee](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]T)
	var resultZero T
	resultMap[0] = resultZero.GetDefault(0).(T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}

// loadMap collects LoadMany results keyed by id, returning the first error.
func loadMap[T models.Identifier](items []T, errs []error) (map[int]T, error) {
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	result := make(map[int]T, len(items))
	for _, item := range items {
		result[item.GetId()] = item
	}
	return result, nil
}
