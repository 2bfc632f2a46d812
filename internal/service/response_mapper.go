package service

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toUserProfile(u *entity.User) dto.UserProfileResponse {
	return dto.UserProfileResponse{
		Id:                  u.Id,
		Email:               u.Email,
		FullName:            u.FullName,
		Phone:               u.Phone,
		BusinessName:        u.BusinessName,
		Role:                string(u.Role),
		Status:              string(u.Status),
		PlanType:            string(u.PlanType),
		PlanStatus:          u.PlanStatus,
		PlanPeriodEnd:       u.PlanPeriodEnd,
		StrategyPackCredits: u.StrategyPackCredits,
		CreatedAt:           u.CreatedAt,
	}
}

func toApplicationResponse(a *entity.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
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
		AiAnalysis:   a.AiAnalysis,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toCaseResponse(c *entity.Case) dto.CaseResponse {
	return dto.CaseResponse{
		Id:                c.Id,
		UserId:            c.UserId,
		CaseNumber:        c.CaseNumber,
		Title:             c.Title,
		Status:            string(c.Status),
		IssueType:         c.IssueType,
		Amount:            c.Amount,
		Description:       c.Description,
		Intake:            c.Intake,
		AiAnalysis:        c.AiAnalysis,
		AnalysisStatus:    string(c.AnalysisStatus),
		StrategyPack:      c.StrategyPack,
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

func toContractResponse(c *entity.Contract) dto.ContractResponse {
	parties := c.Parties
	if parties == nil {
		parties = []string{}
	}
	return dto.ContractResponse{
		Id:             c.Id,
		UserId:         c.UserId,
		ContractNumber: c.ContractNumber,
		Title:          c.Title,
		Status:         string(c.Status),
		Parties:        parties,
		Value:          c.Value,
		Terms:          c.Terms,
		AiAnalysis:     c.AiAnalysis,
		NextAction:     c.NextAction,
		NextActionDue:  c.NextActionDue,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toTimelineResponse(t *entity.TimelineEvent) dto.TimelineEventResponse {
	return dto.TimelineEventResponse{
		Id:          t.Id,
		CaseId:      t.CaseId,
		ContractId:  t.ContractId,
		Title:       t.Title,
		Description: t.Description,
		EventDate:   t.EventDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

func toDocumentResponse(d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:          d.Id,
		UserId:      d.UserId,
		CaseId:      d.CaseId,
		ContractId:  d.ContractId,
		Filename:    d.Filename,
		MimeType:    d.MimeType,
		Size:        d.Size,
		Category:    d.Category,
		Description: d.Description,
		Source:      string(d.Source),
		CreatedAt:   d.CreatedAt,
	}
}

func toTagResponse(t model.DocumentTag) dto.TagResponse {
	return dto.TagResponse{
		Id:          t.Id,
		Name:        t.Name,
		Category:    t.Category,
		Description: t.Description,
		Color:       t.Color,
		UsageCount:  t.UsageCount,
	}
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		Id:          p.Id,
		Provider:    p.Provider,
		ProviderRef: p.ProviderRef,
		Plan:        p.Plan,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
