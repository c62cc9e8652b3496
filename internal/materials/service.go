package materials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the material/equipment ledger. All counter mutations go through
// conditional updates (check and write in one statement) so concurrent issues
// cannot oversubscribe stock, and every lifecycle step runs in one
// transaction with its assignment row, event row and any synthesized penalty.
type Service struct {
	DB *gorm.DB
}

// Fault attribution for one-step breakage.
const (
	FaultTechnical = "technical"
	FaultWorker    = "worker"
)

// Return outcomes for ConfirmReturn.
const (
	OutcomeReturned = "returned"
	OutcomeBroken   = "broken"
)

// CreateMaterialInput for material creation.
type CreateMaterialInput struct {
	Name          string   `json:"name"`
	MaterialType  string   `json:"material_type"`
	Unit          string   `json:"unit"`
	UnitPrice     *float64 `json:"unit_price"`
	TotalQuantity int      `json:"total_quantity"`
}

// CreateMaterial inserts a material row.
func (s *Service) CreateMaterial(ctx context.Context, orgID uuid.UUID, in CreateMaterialInput) (*domain.Material, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if in.MaterialType != domain.MaterialTypeConsumable && in.MaterialType != domain.MaterialTypeEquipment {
		return nil, fmt.Errorf("%w: material_type must be consumable or equipment", apperrors.ErrValidation)
	}
	if in.TotalQuantity < 0 {
		return nil, fmt.Errorf("%w: total_quantity must not be negative", apperrors.ErrValidation)
	}
	if in.UnitPrice != nil && *in.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit_price must not be negative", apperrors.ErrValidation)
	}

	m := &domain.Material{
		OrganizationID: orgID,
		Name:           in.Name,
		MaterialType:   in.MaterialType,
		Unit:           in.Unit,
		UnitPrice:      in.UnitPrice,
		TotalQuantity:  in.TotalQuantity,
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperrors.Wrap("material", err)
	}
	return m, nil
}

// UpdateMaterialInput for material edits. MaterialType is immutable after
// creation; the consumable/equipment duality decides which counters exist.
type UpdateMaterialInput struct {
	Name          *string  `json:"name"`
	Unit          *string  `json:"unit"`
	UnitPrice     *float64 `json:"unit_price"`
	TotalQuantity *int     `json:"total_quantity"`
}

// UpdateMaterial updates allowed fields. For equipment, total_quantity may
// not be set below the currently assigned quantity.
func (s *Service) UpdateMaterial(ctx context.Context, orgID, materialID uuid.UUID, in UpdateMaterialInput) (*domain.Material, error) {
	var out *domain.Material
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.Material
		if err := tx.Where("material_id = ? AND organization_id = ?", materialID, orgID).First(&m).Error; err != nil {
			return apperrors.Wrap("material", err)
		}
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
			}
			m.Name = *in.Name
		}
		if in.Unit != nil {
			m.Unit = *in.Unit
		}
		if in.UnitPrice != nil {
			if *in.UnitPrice < 0 {
				return fmt.Errorf("%w: unit_price must not be negative", apperrors.ErrValidation)
			}
			m.UnitPrice = in.UnitPrice
		}
		if in.TotalQuantity != nil {
			if *in.TotalQuantity < 0 {
				return fmt.Errorf("%w: total_quantity must not be negative", apperrors.ErrValidation)
			}
			if m.MaterialType == domain.MaterialTypeEquipment && *in.TotalQuantity < m.AssignedQuantity {
				return fmt.Errorf("%w: total_quantity cannot drop below assigned quantity %d", apperrors.ErrValidation, m.AssignedQuantity)
			}
			m.TotalQuantity = *in.TotalQuantity
		}
		if err := tx.Save(&m).Error; err != nil {
			return apperrors.Wrap("material", err)
		}
		out = &m
		return nil
	})
	return out, err
}

// GetMaterial returns one material.
func (s *Service) GetMaterial(ctx context.Context, orgID, materialID uuid.UUID) (*domain.Material, error) {
	var m domain.Material
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("material_id = ?", materialID).First(&m).Error; err != nil {
		return nil, apperrors.Wrap("material", err)
	}
	return &m, nil
}

// ListMaterials returns all materials for the organization.
func (s *Service) ListMaterials(ctx context.Context, orgID uuid.UUID) ([]domain.Material, error) {
	var out []domain.Material
	if err := tenant.Scoped(ctx, s.DB, orgID).Order("name").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("materials", err)
	}
	return out, nil
}

// DeleteMaterial hard-deletes a material. Rejected while any assignment
// references it.
func (s *Service) DeleteMaterial(ctx context.Context, orgID, materialID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.Material
		if err := tx.Where("material_id = ? AND organization_id = ?", materialID, orgID).First(&m).Error; err != nil {
			return apperrors.Wrap("material", err)
		}
		var n int64
		if err := tx.Model(&domain.MaterialAssignment{}).
			Where("material_id = ? AND organization_id = ?", materialID, orgID).
			Count(&n).Error; err != nil {
			return apperrors.Wrap("material assignments", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: material has %d assignment(s)", apperrors.ErrHasDependents, n)
		}
		return apperrors.Wrap("material", tx.Delete(&m).Error)
	})
}

// IssueInput for issuing stock to a team.
type IssueInput struct {
	MaterialID uuid.UUID  `json:"material_id"`
	TeamID     uuid.UUID  `json:"team_id"`
	Quantity   int        `json:"quantity"`
	IssuedOn   time.Time  `json:"issued_on"`
	Notes      string     `json:"notes"`
	ActorID    *uuid.UUID `json:"-"`
}

// Issue hands a quantity of a material to a team.
//
// Consumables: decrements total_quantity permanently and writes a consumed
// assignment row (no return cycle). Equipment: increments assigned_quantity
// and writes an active assignment row. Both checks are conditional updates;
// zero affected rows means another session won the race or stock was short,
// and nothing is changed.
func (s *Service) Issue(ctx context.Context, orgID uuid.UUID, in IssueInput) (*domain.MaterialAssignment, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if in.IssuedOn.IsZero() {
		in.IssuedOn = time.Now()
	}

	var created *domain.MaterialAssignment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mat domain.Material
		if err := tx.Where("material_id = ? AND organization_id = ?", in.MaterialID, orgID).First(&mat).Error; err != nil {
			return apperrors.Wrap("material", err)
		}
		var team domain.Team
		if err := tx.Where("team_id = ? AND organization_id = ?", in.TeamID, orgID).First(&team).Error; err != nil {
			return apperrors.Wrap("team", err)
		}

		status := domain.AssignmentStatusActive
		eventType := domain.EventIssued
		switch mat.MaterialType {
		case domain.MaterialTypeConsumable:
			res := tx.Model(&domain.Material{}).
				Where("material_id = ? AND organization_id = ? AND total_quantity >= ?", in.MaterialID, orgID, in.Quantity).
				UpdateColumn("total_quantity", gorm.Expr("total_quantity - ?", in.Quantity))
			if res.Error != nil {
				return apperrors.Wrap("material", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %d of %q requested, %d in stock", apperrors.ErrInsufficientStock, in.Quantity, mat.Name, mat.TotalQuantity)
			}
			status = domain.AssignmentStatusConsumed
			eventType = domain.EventConsumed
		case domain.MaterialTypeEquipment:
			res := tx.Model(&domain.Material{}).
				Where("material_id = ? AND organization_id = ? AND total_quantity - assigned_quantity >= ?", in.MaterialID, orgID, in.Quantity).
				UpdateColumn("assigned_quantity", gorm.Expr("assigned_quantity + ?", in.Quantity))
			if res.Error != nil {
				return apperrors.Wrap("material", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %d of %q requested, %d available", apperrors.ErrInsufficientAvailability, in.Quantity, mat.Name, mat.Available())
			}
		default:
			return fmt.Errorf("%w: material has unknown type %q", apperrors.ErrValidation, mat.MaterialType)
		}

		a := &domain.MaterialAssignment{
			OrganizationID: orgID,
			MaterialID:     in.MaterialID,
			TeamID:         in.TeamID,
			Quantity:       in.Quantity,
			IssuedOn:       in.IssuedOn,
			Status:         status,
			Notes:          in.Notes,
		}
		if err := tx.Create(a).Error; err != nil {
			return apperrors.Wrap("material assignment", err)
		}
		if err := s.writeEvent(tx, orgID, a.AssignmentID, eventType, in.ActorID, map[string]interface{}{
			"material_id": in.MaterialID,
			"team_id":     in.TeamID,
			"quantity":    in.Quantity,
		}); err != nil {
			return err
		}
		created = a
		return nil
	})
	return created, err
}

// MarkForReturn transitions an active equipment assignment to pending_return.
// No quantity change yet; the units are still out.
func (s *Service) MarkForReturn(ctx context.Context, orgID, assignmentID uuid.UUID, actorID *uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadEquipmentAssignment(tx, orgID, assignmentID)
		if err != nil {
			return err
		}
		res := tx.Model(&domain.MaterialAssignment{}).
			Where("assignment_id = ? AND organization_id = ? AND status = ?", assignmentID, orgID, domain.AssignmentStatusActive).
			UpdateColumn("status", domain.AssignmentStatusPendingReturn)
		if res.Error != nil {
			return apperrors.Wrap("material assignment", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: assignment is %s, not active", apperrors.ErrInvalidStateTransition, a.Status)
		}
		return s.writeEvent(tx, orgID, assignmentID, domain.EventMarkedForReturn, actorID, map[string]interface{}{
			"quantity": a.Quantity,
		})
	})
}

// ConfirmReturn settles a pending_return assignment. On "returned" the
// assigned counter is released. On "broken" the counter is also released
// (the units are destroyed, not out) and, when the material has a positive
// unit price, one open penalty of unit_price x quantity is charged to the
// team in the same transaction.
func (s *Service) ConfirmReturn(ctx context.Context, orgID, assignmentID uuid.UUID, outcome string, actorID *uuid.UUID) error {
	if outcome != OutcomeReturned && outcome != OutcomeBroken {
		return fmt.Errorf("%w: outcome must be returned or broken", apperrors.ErrValidation)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadEquipmentAssignment(tx, orgID, assignmentID)
		if err != nil {
			return err
		}
		return s.settle(tx, orgID, a, domain.AssignmentStatusPendingReturn, outcome, outcome == OutcomeBroken, actorID)
	})
}

// DirectReturn settles an active equipment assignment in one step, skipping
// pending_return. Never creates a penalty.
func (s *Service) DirectReturn(ctx context.Context, orgID, assignmentID uuid.UUID, actorID *uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadEquipmentAssignment(tx, orgID, assignmentID)
		if err != nil {
			return err
		}
		return s.settle(tx, orgID, a, domain.AssignmentStatusActive, OutcomeReturned, false, actorID)
	})
}

// DirectBreak settles an active equipment assignment as broken in one step.
// Worker-fault breakage charges the team; technical-fault never does.
func (s *Service) DirectBreak(ctx context.Context, orgID, assignmentID uuid.UUID, fault string, actorID *uuid.UUID) error {
	if fault != FaultTechnical && fault != FaultWorker {
		return fmt.Errorf("%w: fault must be technical or worker", apperrors.ErrValidation)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.loadEquipmentAssignment(tx, orgID, assignmentID)
		if err != nil {
			return err
		}
		return s.settle(tx, orgID, a, domain.AssignmentStatusActive, OutcomeBroken, fault == FaultWorker, actorID)
	})
}

// loadEquipmentAssignment loads the assignment and its material and rejects
// non-equipment assignments (consumables have no return cycle).
func (s *Service) loadEquipmentAssignment(tx *gorm.DB, orgID, assignmentID uuid.UUID) (*domain.MaterialAssignment, error) {
	var a domain.MaterialAssignment
	if err := tx.Where("assignment_id = ? AND organization_id = ?", assignmentID, orgID).First(&a).Error; err != nil {
		return nil, apperrors.Wrap("material assignment", err)
	}
	var mat domain.Material
	if err := tx.Where("material_id = ? AND organization_id = ?", a.MaterialID, orgID).First(&mat).Error; err != nil {
		return nil, apperrors.Wrap("material", err)
	}
	if mat.MaterialType != domain.MaterialTypeEquipment {
		return nil, fmt.Errorf("%w: consumable assignments have no return cycle", apperrors.ErrInvalidStateTransition)
	}
	return &a, nil
}

// settle moves an assignment from fromStatus to its terminal state, releases
// the assigned counter and optionally synthesizes the damage penalty.
func (s *Service) settle(tx *gorm.DB, orgID uuid.UUID, a *domain.MaterialAssignment, fromStatus, outcome string, chargeable bool, actorID *uuid.UUID) error {
	toStatus := domain.AssignmentStatusReturned
	eventType := domain.EventReturned
	if outcome == OutcomeBroken {
		toStatus = domain.AssignmentStatusBroken
		eventType = domain.EventBroken
	}

	res := tx.Model(&domain.MaterialAssignment{}).
		Where("assignment_id = ? AND organization_id = ? AND status = ?", a.AssignmentID, orgID, fromStatus).
		UpdateColumn("status", toStatus)
	if res.Error != nil {
		return apperrors.Wrap("material assignment", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: assignment is %s, not %s", apperrors.ErrInvalidStateTransition, a.Status, fromStatus)
	}

	// Release the outstanding units. The guard keeps the counter in
	// [0, total_quantity]; zero rows here means the ledger was corrupted
	// outside this service.
	rel := tx.Model(&domain.Material{}).
		Where("material_id = ? AND organization_id = ? AND assigned_quantity >= ?", a.MaterialID, orgID, a.Quantity).
		UpdateColumn("assigned_quantity", gorm.Expr("assigned_quantity - ?", a.Quantity))
	if rel.Error != nil {
		return apperrors.Wrap("material", rel.Error)
	}
	if rel.RowsAffected == 0 {
		return fmt.Errorf("%w: assigned counter below assignment quantity", apperrors.ErrPersistenceFailure)
	}

	eventData := map[string]interface{}{"quantity": a.Quantity}

	if outcome == OutcomeBroken && chargeable {
		var mat domain.Material
		if err := tx.Where("material_id = ? AND organization_id = ?", a.MaterialID, orgID).First(&mat).Error; err != nil {
			return apperrors.Wrap("material", err)
		}
		if mat.UnitPrice != nil && *mat.UnitPrice > 0 {
			p := &domain.Penalty{
				OrganizationID: orgID,
				TeamID:         &a.TeamID,
				OccurredOn:     time.Now(),
				Amount:         *mat.UnitPrice * float64(a.Quantity),
				Status:         domain.PenaltyStatusOpen,
				Origin:         domain.PenaltyOriginEquipmentDamage,
				Description:    fmt.Sprintf("Damaged equipment: %d x %s", a.Quantity, mat.Name),
			}
			if err := tx.Create(p).Error; err != nil {
				return apperrors.Wrap("penalty", err)
			}
			eventData["penalty_id"] = p.PenaltyID
			eventData["penalty_amount"] = p.Amount
		}
	}

	return s.writeEvent(tx, orgID, a.AssignmentID, eventType, actorID, eventData)
}

func (s *Service) writeEvent(tx *gorm.DB, orgID, assignmentID uuid.UUID, eventType string, actorID *uuid.UUID, data map[string]interface{}) error {
	b, _ := json.Marshal(data)
	ev := &domain.AssignmentEvent{
		OrganizationID: orgID,
		AssignmentID:   assignmentID,
		EventType:      eventType,
		EventData:      datatypes.JSON(b),
		ActorUserID:    actorID,
	}
	return apperrors.Wrap("assignment event", tx.Create(ev).Error)
}

// ListAssignments returns assignments, optionally filtered by material, team
// or status.
func (s *Service) ListAssignments(ctx context.Context, orgID uuid.UUID, materialID, teamID *uuid.UUID, status string) ([]domain.MaterialAssignment, error) {
	q := tenant.Scoped(ctx, s.DB, orgID)
	if materialID != nil {
		q = q.Where("material_id = ?", *materialID)
	}
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.MaterialAssignment
	if err := q.Order("issued_on DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("material assignments", err)
	}
	return out, nil
}

// ListEvents returns the audit trail for one assignment.
func (s *Service) ListEvents(ctx context.Context, orgID, assignmentID uuid.UUID) ([]domain.AssignmentEvent, error) {
	var out []domain.AssignmentEvent
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("assignment_id = ?", assignmentID).
		Order("created_at").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("assignment events", err)
	}
	return out, nil
}
