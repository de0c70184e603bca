package middlewares

import (
	"context"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type toolReader struct {
	db *gorm.DB
}

func (r *toolReader) getTools(ctx context.Context, ids []int) []*dataloader.Result[*models.Tool] {
	var results []models.Tool
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Tool](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetTool(ctx context.Context, id int) (*models.Tool, error) {
	loaders := For(ctx)
	return loaders.toolLoader.Load(ctx, id)()
}

func GetTools(ctx context.Context, ids []int) ([]*models.Tool, []error) {
	loaders := For(ctx)
	return loaders.toolLoader.LoadMany(ctx, ids)()
}

// GetToolMap resolves tools for listings that need names and units by id.
func GetToolMap(ctx context.Context, ids []int) (map[int]*models.Tool, error) {
	return loadMap(GetTools(ctx, ids))
}
