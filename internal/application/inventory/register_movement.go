package inventory

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/pkg/metrics"
)

// RegisterMovementUseCase registra entradas y salidas de producto terminado de forma transaccional.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	Reason    string
	UserEmail string
}

// RegisterMovement valida la entrada, lee el producto dentro de la transacción, verifica que una
// salida no deje stock negativo y persiste movimiento y stock en la misma unidad de trabajo.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.Movement, error) {
	if !entity.ValidMovementType(input.Type) || input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity.Sign() <= 0 || input.Quantity.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return nil, domain.ErrInvalidQuantity
	}
	qty := input.Quantity.IntPart()
	if !input.Quantity.Equal(decimal.NewFromInt(qty)) {
		return nil, domain.ErrInvalidQuantity
	}

	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Type:      input.Type,
			Quantity:  qty,
			Reason:    input.Reason,
			UserEmail: input.UserEmail,
			Date:      uc.now(),
		}
		if mov.Type == entity.MovementTypeEntry && qty > math.MaxInt64-product.CurrentStock {
			return domain.ErrInvalidQuantity
		}
		newStock := product.CurrentStock + mov.Sign()*qty
		if newStock < 0 {
			return domain.ErrInsufficientStock
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveMovement(input.Type, qty)
	return out, nil
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userEmail string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		UserEmail: userEmail,
	})
	if err != nil {
		return nil, err
	}
	p, err := uc.productRepo.GetByID(ctx, mov.ProductID)
	if err != nil {
		return nil, err
	}
	resp := toMovementResponse(mov, "")
	if p != nil {
		resp.ProductName = p.Name
	}
	return &resp, nil
}

// ListMovements historial de movimientos, más recientes primero. El nombre del producto se
// resuelve por consulta; si el producto ya no existe se informa "Eliminado".
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Type != "" && !entity.ValidMovementType(filter.Type) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		name, ok := names[m.ProductID]
		if !ok {
			p, err := uc.productRepo.GetByID(ctx, m.ProductID)
			if err != nil {
				return nil, err
			}
			name = "Eliminado"
			if p != nil {
				name = p.Name
			}
			names[m.ProductID] = name
		}
		items = append(items, toMovementResponse(m, name))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func toMovementResponse(m *entity.Movement, productName string) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: productName,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		UserEmail:   m.UserEmail,
		Date:        m.Date,
	}
}
