package service

import (
	"context"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"
)

// --- Evaluation DTOs ---

type CreateEvaluationRequest struct {
	EmployeeID uint        `json:"empleado_id" binding:"required"`
	Date       *model.Date `json:"fecha" binding:"required"`
	Period     string      `json:"periodo" binding:"omitempty,max=20"`
	Evaluator  string      `json:"evaluador" binding:"required,max=150"`
	Score      *float64    `json:"puntuacion" binding:"required,min=0,max=100"`
	Comments   string      `json:"comentarios"`
}

type UpdateEvaluationRequest struct {
	Date      *model.Date `json:"fecha"`
	Period    *string     `json:"periodo" binding:"omitempty,max=20"`
	Evaluator *string     `json:"evaluador" binding:"omitempty,max=150"`
	Score     *float64    `json:"puntuacion" binding:"omitempty,min=0,max=100"`
	Comments  *string     `json:"comentarios"`
}

// --- Training DTOs ---

type CreateTrainingRequest struct {
	EmployeeID  uint        `json:"empleado_id" binding:"required"`
	Course      string      `json:"curso" binding:"required,max=200"`
	Institution string      `json:"institucion" binding:"omitempty,max=200"`
	StartDate   *model.Date `json:"fecha_inicio" binding:"required"`
	EndDate     *model.Date `json:"fecha_fin"`
	Hours       int         `json:"horas" binding:"omitempty,min=0"`
	Certified   bool        `json:"certificado"`
}

type UpdateTrainingRequest struct {
	Course      *string     `json:"curso" binding:"omitempty,max=200"`
	Institution *string     `json:"institucion" binding:"omitempty,max=200"`
	StartDate   *model.Date `json:"fecha_inicio"`
	EndDate     *model.Date `json:"fecha_fin"`
	Hours       *int        `json:"horas" binding:"omitempty,min=0"`
	Certified   *bool       `json:"certificado"`
}

// --- Interfaces ---

type EvaluationService interface {
	Create(ctx context.Context, req CreateEvaluationRequest) (*model.Evaluation, error)
	List(ctx context.Context, page, limit int) ([]model.Evaluation, int64, error)
	Get(ctx context.Context, id uint) (*model.Evaluation, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Evaluation, error)
	Update(ctx context.Context, id uint, req UpdateEvaluationRequest) (*model.Evaluation, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type TrainingService interface {
	Create(ctx context.Context, req CreateTrainingRequest) (*model.Training, error)
	List(ctx context.Context, page, limit int) ([]model.Training, int64, error)
	Get(ctx context.Context, id uint) (*model.Training, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Training, error)
	Update(ctx context.Context, id uint, req UpdateTrainingRequest) (*model.Training, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

func checkScore(score float64) error {
	if score < model.MinScore || score > model.MaxScore {
		return apperror.ValidationFields(map[string]string{"puntuacion": "must be between 0 and 100"})
	}
	return nil
}

// --- Evaluation implementation ---

type evaluationService struct {
	repos *repository.Repositories
	pub   events.Publisher
}

func NewEvaluationService(repos *repository.Repositories, pub events.Publisher) EvaluationService {
	return &evaluationService{repos: repos, pub: pub}
}

func (s *evaluationService) Create(ctx context.Context, req CreateEvaluationRequest) (*model.Evaluation, error) {
	if req.Date == nil || req.Date.IsZero() {
		return nil, apperror.ValidationFields(map[string]string{"fecha": "required"})
	}
	if req.Score == nil {
		return nil, apperror.ValidationFields(map[string]string{"puntuacion": "required"})
	}
	if err := checkScore(*req.Score); err != nil {
		return nil, err
	}
	evaluator := strings.TrimSpace(req.Evaluator)
	if evaluator == "" {
		return nil, apperror.ValidationFields(map[string]string{"evaluador": "required"})
	}
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}

	e := &model.Evaluation{
		EmployeeID: req.EmployeeID,
		Date:       *req.Date,
		Period:     strings.TrimSpace(req.Period),
		Evaluator:  evaluator,
		Score:      *req.Score,
		Comments:   strings.TrimSpace(req.Comments),
	}
	if err := s.repos.Evaluations.Create(ctx, e); err != nil {
		return nil, apperror.Classify(err, "create evaluation")
	}

	emit(ctx, s.pub, EntityEvaluation, events.ActionCreated, e.ID, e)
	return e, nil
}

func (s *evaluationService) List(ctx context.Context, page, limit int) ([]model.Evaluation, int64, error) {
	items, total, err := s.repos.Evaluations.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list evaluations")
	}
	return items, total, nil
}

func (s *evaluationService) Get(ctx context.Context, id uint) (*model.Evaluation, error) {
	e, err := s.repos.Evaluations.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "evaluacion", id)
	}
	return e, nil
}

func (s *evaluationService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Evaluation, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Evaluations.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee evaluations")
	}
	return items, nil
}

func (s *evaluationService) Update(ctx context.Context, id uint, req UpdateEvaluationRequest) (*model.Evaluation, error) {
	fields := map[string]interface{}{}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, apperror.ValidationFields(map[string]string{"fecha": "must not be empty"})
		}
		fields["fecha"] = *req.Date
	}
	if req.Period != nil {
		fields["periodo"] = strings.TrimSpace(*req.Period)
	}
	if req.Evaluator != nil {
		evaluator := strings.TrimSpace(*req.Evaluator)
		if evaluator == "" {
			return nil, apperror.ValidationFields(map[string]string{"evaluador": "must not be empty"})
		}
		fields["evaluador"] = evaluator
	}
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
		fields["puntuacion"] = *req.Score
	}
	if req.Comments != nil {
		fields["comentarios"] = strings.TrimSpace(*req.Comments)
	}

	if len(fields) > 0 {
		if err := s.repos.Evaluations.UpdateFields(ctx, id, fields); err != nil {
			return nil, loadErr(err, "evaluacion", id)
		}
		emit(ctx, s.pub, EntityEvaluation, events.ActionUpdated, id, fields)
	}
	return s.Get(ctx, id)
}

func (s *evaluationService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Evaluations.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete evaluation")
	}
	if deleted {
		emit(ctx, s.pub, EntityEvaluation, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

// --- Training implementation ---

type trainingService struct {
	repos *repository.Repositories
	pub   events.Publisher
}

func NewTrainingService(repos *repository.Repositories, pub events.Publisher) TrainingService {
	return &trainingService{repos: repos, pub: pub}
}

func validTrainingRange(start model.Date, end *model.Date) error {
	if end != nil && !end.IsZero() && end.Before(start.Time) {
		return apperror.ValidationFields(map[string]string{"fecha_fin": "must not be before fecha_inicio"})
	}
	return nil
}

func (s *trainingService) Create(ctx context.Context, req CreateTrainingRequest) (*model.Training, error) {
	if req.StartDate == nil || req.StartDate.IsZero() {
		return nil, apperror.ValidationFields(map[string]string{"fecha_inicio": "required"})
	}
	course := strings.TrimSpace(req.Course)
	if course == "" {
		return nil, apperror.ValidationFields(map[string]string{"curso": "required"})
	}
	if req.Hours < 0 {
		return nil, apperror.ValidationFields(map[string]string{"horas": "must not be negative"})
	}
	if err := validTrainingRange(*req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}

	t := &model.Training{
		EmployeeID:  req.EmployeeID,
		Course:      course,
		Institution: strings.TrimSpace(req.Institution),
		StartDate:   *req.StartDate,
		EndDate:     req.EndDate,
		Hours:       req.Hours,
		Certified:   req.Certified,
	}
	if err := s.repos.Trainings.Create(ctx, t); err != nil {
		return nil, apperror.Classify(err, "create training")
	}

	emit(ctx, s.pub, EntityTraining, events.ActionCreated, t.ID, t)
	return t, nil
}

func (s *trainingService) List(ctx context.Context, page, limit int) ([]model.Training, int64, error) {
	items, total, err := s.repos.Trainings.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list trainings")
	}
	return items, total, nil
}

func (s *trainingService) Get(ctx context.Context, id uint) (*model.Training, error) {
	t, err := s.repos.Trainings.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "capacitacion", id)
	}
	return t, nil
}

func (s *trainingService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Training, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Trainings.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee trainings")
	}
	return items, nil
}

func (s *trainingService) Update(ctx context.Context, id uint, req UpdateTrainingRequest) (*model.Training, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	fields := map[string]interface{}{}

	if req.Course != nil {
		course := strings.TrimSpace(*req.Course)
		if course == "" {
			return nil, apperror.ValidationFields(map[string]string{"curso": "must not be empty"})
		}
		fields["curso"] = course
	}
	if req.Institution != nil {
		fields["institucion"] = strings.TrimSpace(*req.Institution)
	}
	if req.StartDate != nil {
		if req.StartDate.IsZero() {
			return nil, apperror.ValidationFields(map[string]string{"fecha_inicio": "must not be empty"})
		}
		merged.StartDate = *req.StartDate
		fields["fecha_inicio"] = *req.StartDate
	}
	if req.EndDate != nil {
		merged.EndDate = req.EndDate
		fields["fecha_fin"] = *req.EndDate
	}
	if req.Hours != nil {
		if *req.Hours < 0 {
			return nil, apperror.ValidationFields(map[string]string{"horas": "must not be negative"})
		}
		fields["horas"] = *req.Hours
	}
	if req.Certified != nil {
		fields["certificado"] = *req.Certified
	}
	if len(fields) == 0 {
		return current, nil
	}
	if err := validTrainingRange(merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}

	if err := s.repos.Trainings.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "capacitacion", id)
	}
	emit(ctx, s.pub, EntityTraining, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *trainingService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Trainings.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete training")
	}
	if deleted {
		emit(ctx, s.pub, EntityTraining, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}
