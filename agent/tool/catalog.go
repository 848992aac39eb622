package tool

import (
	contractx "github.com/spinlab/coach/agent/contract"
)

const (
	ToolPerformanceSummary  = "get_performance_summary"
	ToolRoleplaySessions    = "get_roleplay_sessions"
	ToolSessionDetails      = "get_session_details"
	ToolSpinAnalysis        = "get_spin_analysis"
	ToolDailyChallenges     = "get_daily_challenges"
	ToolChallengeStats      = "get_challenge_stats"
	ToolMeetEvaluations     = "get_meet_evaluations"
	ToolCalendarEvents      = "get_calendar_events"
	ToolFreeSlots           = "get_free_slots"
	ToolCreateCalendarEvent = "create_calendar_event"
	ToolUpdateCalendarEvent = "update_calendar_event"
	ToolDeleteCalendarEvent = "delete_calendar_event"
	ToolToggleMeetingBot    = "toggle_meeting_bot"
	ToolColleagues          = "get_colleagues"
	ToolShareEvaluation     = "share_evaluation"
	ToolSharedWithMe        = "get_shared_with_me"
	ToolNotifications       = "get_notifications"
	ToolTeamOverview        = "get_team_overview"
	ToolTeamRanking         = "get_team_ranking"
	ToolEmployeePerformance = "get_employee_performance"
	ToolTeamSpinAverages    = "get_team_spin_averages"
	ToolTeamChallenges      = "get_team_challenges"
	ToolUpdateEmployeeRole  = "update_employee_role"
)

func p(t contractx.ToolParamType, desc string) contractx.ToolParam {
	return contractx.ToolParam{Type: t, Description: desc}
}

func req(t contractx.ToolParamType, desc string) contractx.ToolParam {
	return contractx.ToolParam{Type: t, Description: desc, Required: true}
}

func enum(desc string, required bool, values ...string) contractx.ToolParam {
	return contractx.ToolParam{Type: contractx.ParamString, Description: desc, Required: required, Enum: values}
}

var baseCatalog = []contractx.ToolDefinition{
	{
		Name:        ToolPerformanceSummary,
		Description: "Resumo de performance do usuário: média geral, melhor e última nota, médias SPIN, pontos fortes, gaps e tendência.",
	},
	{
		Name:        ToolRoleplaySessions,
		Description: "Lista as sessões de roleplay do usuário, mais recentes primeiro.",
		Params: map[string]contractx.ToolParam{
			"limit":  p(contractx.ParamInteger, "Quantidade máxima de sessões (padrão 10, máximo 50)"),
			"status": enum("Filtra pelo status da sessão", false, "active", "completed", "abandoned"),
		},
	},
	{
		Name:        ToolSessionDetails,
		Description: "Detalhes e avaliação completa de uma sessão de roleplay do usuário.",
		Params: map[string]contractx.ToolParam{
			"session_id": req(contractx.ParamString, "ID da sessão"),
		},
	},
	{
		Name:        ToolSpinAnalysis,
		Description: "Análise SPIN (Situação, Problema, Implicação, Necessidade) das sessões avaliadas recentes.",
		Params: map[string]contractx.ToolParam{
			"limit": p(contractx.ParamInteger, "Quantidade de sessões analisadas (padrão 10)"),
		},
	},
	{
		Name:        ToolDailyChallenges,
		Description: "Desafios diários do usuário.",
		Params: map[string]contractx.ToolParam{
			"limit":  p(contractx.ParamInteger, "Quantidade máxima de desafios (padrão 10)"),
			"status": enum("Filtra pelo status do desafio", false, "pending", "completed", "skipped"),
		},
	},
	{
		Name:        ToolChallengeStats,
		Description: "Estatísticas dos desafios diários: taxa de conclusão, nota média e sequência atual.",
	},
	{
		Name:        ToolMeetEvaluations,
		Description: "Avaliações de reuniões reais (Google Meet) do usuário.",
		Params: map[string]contractx.ToolParam{
			"limit": p(contractx.ParamInteger, "Quantidade máxima de avaliações (padrão 10)"),
		},
	},
	{
		Name:        ToolCalendarEvents,
		Description: "Eventos da agenda Google do usuário em um intervalo de datas.",
		Params: map[string]contractx.ToolParam{
			"start_date": p(contractx.ParamString, "Data inicial YYYY-MM-DD (padrão hoje)"),
			"end_date":   p(contractx.ParamString, "Data final YYYY-MM-DD (padrão 7 dias após a inicial)"),
		},
	},
	{
		Name:        ToolFreeSlots,
		Description: "Horários livres do usuário em um dia, dentro do expediente.",
		Params: map[string]contractx.ToolParam{
			"date": req(contractx.ParamString, "Data YYYY-MM-DD"),
		},
	},
	{
		Name:        ToolCreateCalendarEvent,
		Description: "Cria um evento na agenda Google do usuário, opcionalmente com link do Meet.",
		Params: map[string]contractx.ToolParam{
			"title":            req(contractx.ParamString, "Título do evento"),
			"date":             req(contractx.ParamString, "Data YYYY-MM-DD"),
			"start_time":       req(contractx.ParamString, "Horário de início HH:MM"),
			"end_time":         p(contractx.ParamString, "Horário de término HH:MM"),
			"duration_minutes": p(contractx.ParamInteger, "Duração em minutos quando end_time não for informado (padrão 60)"),
			"description":      p(contractx.ParamString, "Descrição do evento"),
			"attendees":        {Type: contractx.ParamArray, Items: contractx.ParamString, Description: "E-mails dos participantes"},
			"add_meet":         p(contractx.ParamBoolean, "Cria link do Google Meet"),
		},
	},
	{
		Name:        ToolUpdateCalendarEvent,
		Description: "Altera um evento existente da agenda do usuário.",
		Params: map[string]contractx.ToolParam{
			"event_id":    req(contractx.ParamString, "ID do evento"),
			"title":       p(contractx.ParamString, "Novo título"),
			"date":        p(contractx.ParamString, "Nova data YYYY-MM-DD"),
			"start_time":  p(contractx.ParamString, "Novo horário de início HH:MM"),
			"end_time":    p(contractx.ParamString, "Novo horário de término HH:MM"),
			"description": p(contractx.ParamString, "Nova descrição"),
		},
	},
	{
		Name:        ToolDeleteCalendarEvent,
		Description: "Remove um evento da agenda do usuário.",
		Params: map[string]contractx.ToolParam{
			"event_id": req(contractx.ParamString, "ID do evento"),
		},
	},
	{
		Name:        ToolToggleMeetingBot,
		Description: "Ativa ou desativa o bot que grava e avalia a reunião.",
		Params: map[string]contractx.ToolParam{
			"event_id": req(contractx.ParamString, "ID do evento"),
			"enabled":  req(contractx.ParamBoolean, "true para ativar, false para desativar"),
		},
	},
	{
		Name:        ToolColleagues,
		Description: "Lista os colegas da mesma empresa, para compartilhar avaliações.",
	},
	{
		Name:        ToolShareEvaluation,
		Description: "Compartilha uma avaliação (roleplay ou reunião) com colegas da empresa.",
		Params: map[string]contractx.ToolParam{
			"evaluation_id":   req(contractx.ParamString, "ID da sessão de roleplay ou da avaliação de reunião"),
			"evaluation_type": enum("Tipo da avaliação", true, "roleplay", "meet"),
			"recipient_ids":   {Type: contractx.ParamArray, Items: contractx.ParamString, Required: true, Description: "IDs de usuário dos destinatários (veja get_colleagues)"},
			"message":         p(contractx.ParamString, "Mensagem opcional"),
		},
	},
	{
		Name:        ToolSharedWithMe,
		Description: "Avaliações que colegas compartilharam com o usuário.",
		Params: map[string]contractx.ToolParam{
			"limit": p(contractx.ParamInteger, "Quantidade máxima (padrão 10)"),
		},
	},
	{
		Name:        ToolNotifications,
		Description: "Notificações do usuário.",
		Params: map[string]contractx.ToolParam{
			"unread_only": p(contractx.ParamBoolean, "Somente não lidas"),
			"limit":       p(contractx.ParamInteger, "Quantidade máxima (padrão 10)"),
		},
	},
}

var extendedCatalog = []contractx.ToolDefinition{
	{
		Name:        ToolTeamOverview,
		Description: "Visão geral da equipe: tamanho, sessões nos últimos 30 dias e média por colaborador.",
	},
	{
		Name:        ToolTeamRanking,
		Description: "Ranking da equipe por nota média ou por quantidade de sessões.",
		Params: map[string]contractx.ToolParam{
			"metric": enum("Critério do ranking (padrão average_score)", false, "average_score", "sessions"),
			"limit":  p(contractx.ParamInteger, "Quantidade de posições (padrão 10)"),
		},
	},
	{
		Name:        ToolEmployeePerformance,
		Description: "Performance de um colaborador específico. Sem parâmetros usa o colaborador aberto na tela.",
		Params: map[string]contractx.ToolParam{
			"employee_id":   p(contractx.ParamString, "ID do colaborador"),
			"employee_name": p(contractx.ParamString, "Nome (ou parte do nome) do colaborador"),
		},
	},
	{
		Name:        ToolTeamSpinAverages,
		Description: "Médias SPIN da equipe e de cada colaborador.",
	},
	{
		Name:        ToolTeamChallenges,
		Description: "Desafios diários da equipe em uma data.",
		Params: map[string]contractx.ToolParam{
			"date":   p(contractx.ParamString, "Data YYYY-MM-DD (padrão hoje)"),
			"status": enum("Filtra pelo status do desafio", false, "pending", "completed", "skipped"),
		},
	},
	{
		Name:        ToolUpdateEmployeeRole,
		Description: "Altera o papel de um colaborador da empresa.",
		Params: map[string]contractx.ToolParam{
			"employee_id": req(contractx.ParamString, "ID do colaborador"),
			"role":        enum("Novo papel", true, string(contractx.RoleSeller), string(contractx.RoleManager), string(contractx.RoleAdmin)),
		},
	},
}

// CatalogFor returns the tools offered to a caller with the given role.
// Managers get the team tools on top of the base set.
func CatalogFor(role contractx.Role) []contractx.ToolDefinition {
	out := make([]contractx.ToolDefinition, 0, len(baseCatalog)+len(extendedCatalog))
	out = append(out, baseCatalog...)
	if role.IsManager() {
		out = append(out, extendedCatalog...)
	}
	return out
}

// IsTeamTool reports whether name belongs to the manager-only set.
func IsTeamTool(name string) bool {
	for _, def := range extendedCatalog {
		if def.Name == name {
			return true
		}
	}
	return false
}
