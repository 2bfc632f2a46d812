package mapper

import (
	"encoding/json"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"

	"gorm.io/datatypes"
)

type CaseMapper struct{}

func NewCaseMapper() *CaseMapper {
	return &CaseMapper{}
}

func toJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

func fromJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return nil
	}
	return json.RawMessage(j)
}

func (m *CaseMapper) ApplicationToEntity(a *model.Application) *entity.Application {
	if a == nil {
		return nil
	}
	return &entity.Application{
		Id:           a.Id,
		UserId:       a.UserId,
		FullName:     a.FullName,
		Email:        a.Email,
		Phone:        a.Phone,
		BusinessName: a.BusinessName,
		Trade:        a.Trade,
		State:        a.State,
		IssueType:    a.IssueType,
		Description:  a.Description,
		Amount:       a.Amount,
		IssueDate:    a.IssueDate,
		Status:       entity.ApplicationStatus(a.Status),
		ReviewedBy:   a.ReviewedBy,
		ReviewedAt:   a.ReviewedAt,
		ReviewNotes:  a.ReviewNotes,
		AiAnalysis:   fromJSON(a.AiAnalysis),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *CaseMapper) ApplicationToModel(a *entity.Application) *model.Application {
	if a == nil {
		return nil
	}
	return &model.Application{
		Id:           a.Id,
		UserId:       a.UserId,
		FullName:     a.FullName,
		Email:        a.Email,
		Phone:        a.Phone,
		BusinessName: a.BusinessName,
		Trade:        a.Trade,
		State:        a.State,
		IssueType:    a.IssueType,
		Description:  a.Description,
		Amount:       a.Amount,
		IssueDate:    a.IssueDate,
		Status:       string(a.Status),
		ReviewedBy:   a.ReviewedBy,
		ReviewedAt:   a.ReviewedAt,
		ReviewNotes:  a.ReviewNotes,
		AiAnalysis:   toJSON(a.AiAnalysis),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *CaseMapper) CaseToEntity(c *model.Case) *entity.Case {
	if c == nil {
		return nil
	}
	return &entity.Case{
		Id:                c.Id,
		UserId:            c.UserId,
		CaseNumber:        c.CaseNumber,
		Title:             c.Title,
		Status:            entity.CaseStatus(c.Status),
		IssueType:         c.IssueType,
		Amount:            c.Amount,
		Description:       c.Description,
		Intake:            fromJSON(c.Intake),
		AiAnalysis:        fromJSON(c.AiAnalysis),
		AnalysisStatus:    entity.AnalysisStatus(c.AnalysisStatus),
		StrategyPack:      fromJSON(c.StrategyPack),
		NextAction:        c.NextAction,
		NextActionDue:     c.NextActionDue,
		Progress:          c.Progress,
		MoodScore:         c.MoodScore,
		MoodNote:          c.MoodNote,
		ResolutionMethod:  c.ResolutionMethod,
		RecoveredAmount:   c.RecoveredAmount,
		SatisfactionScore: c.SatisfactionScore,
		ClosedAt:          c.ClosedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (m *CaseMapper) CaseToModel(c *entity.Case) *model.Case {
	if c == nil {
		return nil
	}
	return &model.Case{
		Id:                c.Id,
		UserId:            c.UserId,
		CaseNumber:        c.CaseNumber,
		Title:             c.Title,
		Status:            string(c.Status),
		IssueType:         c.IssueType,
		Amount:            c.Amount,
		Description:       c.Description,
		Intake:            toJSON(c.Intake),
		AiAnalysis:        toJSON(c.AiAnalysis),
		AnalysisStatus:    string(c.AnalysisStatus),
		StrategyPack:      toJSON(c.StrategyPack),
		NextAction:        c.NextAction,
		NextActionDue:     c.NextActionDue,
		Progress:          c.Progress,
		MoodScore:         c.MoodScore,
		MoodNote:          c.MoodNote,
		ResolutionMethod:  c.ResolutionMethod,
		RecoveredAmount:   c.RecoveredAmount,
		SatisfactionScore: c.SatisfactionScore,
		ClosedAt:          c.ClosedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (m *CaseMapper) ContractToEntity(c *model.Contract) *entity.Contract {
	if c == nil {
		return nil
	}
	parties := []string{}
	if len(c.Parties) > 0 {
		_ = json.Unmarshal(c.Parties, &parties)
	}
	return &entity.Contract{
		Id:             c.Id,
		UserId:         c.UserId,
		ContractNumber: c.ContractNumber,
		Title:          c.Title,
		Status:         entity.ContractStatus(c.Status),
		Parties:        parties,
		Value:          c.Value,
		Terms:          c.Terms,
		AiAnalysis:     fromJSON(c.AiAnalysis),
		NextAction:     c.NextAction,
		NextActionDue:  c.NextActionDue,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *CaseMapper) ContractToModel(c *entity.Contract) *model.Contract {
	if c == nil {
		return nil
	}
	parties := c.Parties
	if parties == nil {
		parties = []string{}
	}
	partiesJSON, _ := json.Marshal(parties)
	return &model.Contract{
		Id:             c.Id,
		UserId:         c.UserId,
		ContractNumber: c.ContractNumber,
		Title:          c.Title,
		Status:         string(c.Status),
		Parties:        datatypes.JSON(partiesJSON),
		Value:          c.Value,
		Terms:          c.Terms,
		AiAnalysis:     toJSON(c.AiAnalysis),
		NextAction:     c.NextAction,
		NextActionDue:  c.NextActionDue,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *CaseMapper) TimelineToEntity(t *model.TimelineEvent) *entity.TimelineEvent {
	if t == nil {
		return nil
	}
	return &entity.TimelineEvent{
		Id:          t.Id,
		UserId:      t.UserId,
		CaseId:      t.CaseId,
		ContractId:  t.ContractId,
		Title:       t.Title,
		Description: t.Description,
		EventDate:   t.EventDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *CaseMapper) TimelineToModel(t *entity.TimelineEvent) *model.TimelineEvent {
	if t == nil {
		return nil
	}
	return &model.TimelineEvent{
		Id:          t.Id,
		UserId:      t.UserId,
		CaseId:      t.CaseId,
		ContractId:  t.ContractId,
		Title:       t.Title,
		Description: t.Description,
		EventDate:   t.EventDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
