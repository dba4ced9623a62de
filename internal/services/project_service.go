package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"product-studio-backend/internal/middleware"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/realtime"
	"product-studio-backend/internal/workflow"
)

// ProjectRepository is the store plus the lifecycle calls the engine never makes.
type ProjectRepository interface {
	workflow.ProjectStore
	Create(ctx context.Context, userID uuid.UUID, name string) (*models.ProjectRecord, error)
	List(ctx context.Context, userID *uuid.UUID) ([]models.ProjectRecord, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CatalogReader adds the browse queries to the engine's Catalog.
type CatalogReader interface {
	workflow.Catalog
	ListManufacturers(ctx context.Context, projectID uuid.UUID) ([]models.ManufacturerSnapshot, error)
	ListPackages(ctx context.Context, module workflow.Module) ([]models.PackageSnapshot, error)
}

// ProjectService runs engine commands and, after each one succeeds, re-reads
// the project and notifies subscribers.
type ProjectService struct {
	repo    ProjectRepository
	engine  *workflow.Engine
	catalog CatalogReader
	broker  realtime.Broker
}

func NewProjectService(repo ProjectRepository, engine *workflow.Engine, catalog CatalogReader, broker realtime.Broker) *ProjectService {
	return &ProjectService{
		repo:    repo,
		engine:  engine,
		catalog: catalog,
		broker:  broker,
	}
}

// Broker exposes the event broker for the SSE handler.
func (s *ProjectService) Broker() realtime.Broker {
	return s.broker
}

func (s *ProjectService) Create(ctx context.Context, actor workflow.Actor, name string) (*workflow.Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &workflow.Error{Kind: workflow.KindValidation, Op: "create project", Msg: "name is required"}
	}
	rec, err := s.repo.Create(ctx, actor.UserID, name)
	if err != nil {
		return nil, &workflow.Error{Kind: workflow.KindPersistence, Op: "create project", Msg: "store write failed", Err: err}
	}
	s.publish(ctx, realtime.NewEvent(realtime.EventProjectCreated, *rec, nil))
	return s.engine.Get(ctx, actor, rec.ID)
}

// List returns every live project for admins and the caller's own otherwise.
func (s *ProjectService) List(ctx context.Context, actor workflow.Actor) ([]models.ProjectRecord, error) {
	var owner *uuid.UUID
	if !actor.IsAdmin() {
		owner = &actor.UserID
	}
	projects, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, &workflow.Error{Kind: workflow.KindPersistence, Op: "list projects", Msg: "store read failed", Err: err}
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*workflow.Result, error) {
	return s.engine.Get(ctx, actor, id)
}

// Delete soft-deletes a project. Owners and admins may delete.
func (s *ProjectService) Delete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error {
	res, err := s.engine.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return &workflow.Error{Kind: workflow.KindPersistence, Op: "delete project", Msg: "store write failed", Err: err}
	}
	if !deleted {
		return workflow.NotFoundf("project %s not found", id)
	}
	s.publish(ctx, realtime.NewEvent(realtime.EventProjectDeleted, res.Project, nil))
	return nil
}

func (s *ProjectService) Transition(ctx context.Context, actor workflow.Actor, id uuid.UUID, target models.ProjectStatus) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventStatusChanged, statusPayload, func() (*workflow.Result, error) {
		return s.engine.Transition(ctx, actor, id, target)
	})
}

func (s *ProjectService) SubmitBrief(ctx context.Context, actor workflow.Actor, id uuid.UUID, brief models.Brief) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventBriefSubmitted, statusPayload, func() (*workflow.Result, error) {
		return s.engine.SubmitBrief(ctx, actor, id, brief)
	})
}

func (s *ProjectService) SelectManufacturer(ctx context.Context, actor workflow.Actor, id uuid.UUID, manufacturerID string) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSelectionChanged, nil, func() (*workflow.Result, error) {
		return s.engine.SelectManufacturer(ctx, actor, id, manufacturerID)
	})
}

func (s *ProjectService) SelectPackage(ctx context.Context, actor workflow.Actor, id uuid.UUID, module workflow.Module, packageID string) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSelectionChanged, nil, func() (*workflow.Result, error) {
		return s.engine.SelectPackage(ctx, actor, id, module, packageID)
	})
}

func (s *ProjectService) AdvancePrototype(ctx context.Context, actor workflow.Actor, id uuid.UUID, u workflow.PrototypeUpdate) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventPrototypeUpdated, prototypePayload, func() (*workflow.Result, error) {
		return s.engine.AdvancePrototype(ctx, actor, id, u)
	})
}

func (s *ProjectService) SubmitFeedback(ctx context.Context, actor workflow.Actor, id uuid.UUID, in workflow.FeedbackInput) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventFeedbackSubmitted, realtime.FeedbackPayload, func() (*workflow.Result, error) {
		return s.engine.SubmitFeedback(ctx, actor, id, in)
	})
}

func (s *ProjectService) Approve(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSampleApproved, statusPayload, func() (*workflow.Result, error) {
		return s.engine.Approve(ctx, actor, id)
	})
}

func (s *ProjectService) RequestNewSample(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSampleRequested, prototypePayload, func() (*workflow.Result, error) {
		return s.engine.RequestNewSample(ctx, actor, id, reason)
	})
}

func (s *ProjectService) Pay(ctx context.Context, actor workflow.Actor, id uuid.UUID, t models.PaymentType) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventPaymentRecorded, paymentPayload(t), func() (*workflow.Result, error) {
		return s.engine.Pay(ctx, actor, id, t)
	})
}

func (s *ProjectService) RecordPayment(ctx context.Context, actor workflow.Actor, id uuid.UUID, t models.PaymentType, reference string) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventPaymentRecorded, paymentPayload(t), func() (*workflow.Result, error) {
		return s.engine.RecordPayment(ctx, actor, id, t, reference)
	})
}

func (s *ProjectService) UpdatePricing(ctx context.Context, actor workflow.Actor, id uuid.UUID, u workflow.PricingUpdate) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSettingsChanged, nil, func() (*workflow.Result, error) {
		return s.engine.UpdatePricing(ctx, actor, id, u)
	})
}

func (s *ProjectService) SetUnlocks(ctx context.Context, actor workflow.Actor, id uuid.UUID, photography, marketing *bool) (*workflow.Result, error) {
	return s.run(ctx, id, realtime.EventSettingsChanged, nil, func() (*workflow.Result, error) {
		return s.engine.SetUnlocks(ctx, actor, id, photography, marketing)
	})
}

// Payments returns the amounts due and the paid flags.
func (s *ProjectService) Payments(ctx context.Context, actor workflow.Actor, id uuid.UUID) (workflow.Amounts, models.Payments, error) {
	res, err := s.engine.Get(ctx, actor, id)
	if err != nil {
		return workflow.Amounts{}, models.Payments{}, err
	}
	return workflow.CalculatePaymentAmounts(res.Project), workflow.GetPaymentStatus(res.Project), nil
}

// Manufacturers lists the quotes a customer can choose from for a project.
func (s *ProjectService) Manufacturers(ctx context.Context, actor workflow.Actor, projectID uuid.UUID) ([]models.ManufacturerSnapshot, error) {
	if _, err := s.engine.Get(ctx, actor, projectID); err != nil {
		return nil, err
	}
	list, err := s.catalog.ListManufacturers(ctx, projectID)
	if err != nil {
		return nil, &workflow.Error{Kind: workflow.KindPersistence, Op: "list manufacturers", Msg: "catalog read failed", Err: err}
	}
	return list, nil
}

func (s *ProjectService) Packages(ctx context.Context, module workflow.Module) ([]models.PackageSnapshot, error) {
	if module != workflow.ModulePhotography && module != workflow.ModuleMarketing {
		return nil, &workflow.Error{Kind: workflow.KindValidation, Op: "list packages", Msg: "packages exist for photography and marketing only"}
	}
	list, err := s.catalog.ListPackages(ctx, module)
	if err != nil {
		return nil, &workflow.Error{Kind: workflow.KindPersistence, Op: "list packages", Msg: "catalog read failed", Err: err}
	}
	return list, nil
}

type payloadFunc func(models.ProjectRecord) map[string]interface{}

// run executes cmd, re-reads the project and publishes one event. A failed
// re-read falls back to the record the command returned.
func (s *ProjectService) run(ctx context.Context, id uuid.UUID, eventType string, payload payloadFunc, cmd func() (*workflow.Result, error)) (*workflow.Result, error) {
	res, err := cmd()
	if err != nil {
		return nil, err
	}

	fresh, err := s.repo.Get(ctx, id)
	if err != nil {
		logf(ctx, "project %s: re-read after %s failed: %v", id, eventType, err)
	} else {
		res = &workflow.Result{
			Project:  *fresh,
			Modules:  workflow.ModuleAccess(*fresh),
			Progress: workflow.ProgressOf(*fresh),
		}
	}

	var data map[string]interface{}
	if payload != nil {
		data = payload(res.Project)
	}
	s.publish(ctx, realtime.NewEvent(eventType, res.Project, data))
	return res, nil
}

func (s *ProjectService) publish(ctx context.Context, ev realtime.Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, ev); err != nil {
		logf(ctx, "project %s: failed to publish %s: %v", ev.ProjectID, ev.Type, err)
	}
}

// logf prefixes the line with the request id when ctx carries one.
func logf(ctx context.Context, format string, args ...interface{}) {
	if rid := middleware.GetRequestID(ctx); rid != "" {
		format = "[req %s] " + format
		args = append([]interface{}{rid}, args...)
	}
	log.Printf(format, args...)
}

func statusPayload(rec models.ProjectRecord) map[string]interface{} {
	p := workflow.ProgressOf(rec)
	return realtime.StatusPayload(rec, p.Percent, p.CustomerStep)
}

func prototypePayload(rec models.ProjectRecord) map[string]interface{} {
	return realtime.PrototypePayload(rec)
}

func paymentPayload(t models.PaymentType) payloadFunc {
	return func(rec models.ProjectRecord) map[string]interface{} {
		return realtime.PaymentPayload(rec, t)
	}
}
