package lifecycle

import (
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

// entityBinding ties an EntityKind to its table and outbox aggregate so the
// lifecycle service can operate generically across tombstoned entities.
type entityBinding struct {
	model     func() interface{}
	aggregate enums.OutboxAggregateType
}

var registry = map[enums.EntityKind]entityBinding{
	enums.EntityKindUser: {
		model:     func() interface{} { return &models.User{} },
		aggregate: enums.AggregateUser,
	},
	enums.EntityKindProduct: {
		model:     func() interface{} { return &models.Product{} },
		aggregate: enums.AggregateProduct,
	},
	enums.EntityKindBrand: {
		model:     func() interface{} { return &models.Brand{} },
		aggregate: enums.AggregateBrand,
	},
	enums.EntityKindCategory: {
		model:     func() interface{} { return &models.Category{} },
		aggregate: enums.AggregateCategory,
	},
	enums.EntityKindStory: {
		model:     func() interface{} { return &models.Story{} },
		aggregate: enums.AggregateStory,
	},
}

func bindingFor(kind enums.EntityKind) (entityBinding, error) {
	binding, ok := registry[kind]
	if !ok {
		return entityBinding{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind "+kind.String())
	}
	return binding, nil
}

// scopeModel returns a query builder targeting the kind's table.
func scopeModel(tx *gorm.DB, binding entityBinding) *gorm.DB {
	return tx.Model(binding.model())
}
