package uefa

import (
	"math"
	"strconv"
	"strings"

	"github.com/riskibarqy/ucl-replacement-race/internal/domain/coefficient"
)

type rankingPayload struct {
	Data *struct {
		Members        *[]rankingItem `json:"members"`
		LastUpdateDate *string        `json:"lastUpdateDate"`
	} `json:"data"`
	Meta struct {
		Collection struct {
			TotalElements any `json:"totalElements"`
		} `json:"collection"`
	} `json:"meta"`
}

type rankingItem struct {
	Member struct {
		ID                  any     `json:"id"`
		DisplayName         *string `json:"displayName"`
		InternationalName   *string `json:"internationalName"`
		DisplayOfficialName *string `json:"displayOfficialName"`
		TeamCode            *string `json:"teamCode"`
		DisplayTeamCode     *string `json:"displayTeamCode"`
		CountryCode         *string `json:"countryCode"`
		CountryName         *string `json:"countryName"`
		LogoURL             *string `json:"logoUrl"`
		MediumLogoURL       *string `json:"mediumLogoUrl"`
		BigLogoURL          *string `json:"bigLogoUrl"`
		AssociationID       any     `json:"associationId"`
		AssociationLogoURL  *string `json:"associationLogoUrl"`
	} `json:"member"`
	OverallRanking struct {
		Position                  any      `json:"position"`
		TotalPoints               *float64 `json:"totalPoints"`
		NationalAssociationPoints *float64 `json:"nationalAssociationPoints"`
		Trend                     *string  `json:"trend"`
		BaseSeasonYear            *int     `json:"baseSeasonYear"`
		TargetSeasonYear          *int     `json:"targetSeasonYear"`
	} `json:"overallRanking"`
	Competition struct {
		ID          any     `json:"id"`
		DisplayName *string `json:"displayName"`
		Type        *string `json:"type"`
	} `json:"competition"`
}

// MapClub maps one ranking member. fallbackRank is used when the provider
// has no numeric position.
func MapClub(item rankingItem, fallbackRank int) coefficient.Entry {
	member := item.Member
	overall := item.OverallRanking

	entry := coefficient.Entry{
		Rank:                           fallbackRank,
		TeamID:                         idString(member.ID),
		TeamName:                       firstPresent(member.DisplayName, member.InternationalName),
		TeamOfficialName:               nonEmpty(member.DisplayOfficialName),
		TeamCode:                       firstPresentPtr(member.TeamCode, member.DisplayTeamCode),
		CountryCode:                    nonEmpty(member.CountryCode),
		CountryName:                    nonEmpty(member.CountryName),
		TeamLogo:                       nonEmpty(member.LogoURL),
		TeamLogoMedium:                 nonEmpty(member.MediumLogoURL),
		TeamLogoLarge:                  nonEmpty(member.BigLogoURL),
		AssociationID:                  idPtr(member.AssociationID),
		AssociationLogo:                nonEmpty(member.AssociationLogoURL),
		CompetitionID:                  idPtr(item.Competition.ID),
		CompetitionName:                nonEmpty(item.Competition.DisplayName),
		CompetitionType:                nonEmpty(item.Competition.Type),
		NationalAssociationCoefficient: overall.NationalAssociationPoints,
		Trend:                          nonEmpty(overall.Trend),
		BaseSeasonYear:                 overall.BaseSeasonYear,
		TargetSeasonYear:               overall.TargetSeasonYear,
	}
	if position, ok := overall.Position.(float64); ok && !math.IsNaN(position) && !math.IsInf(position, 0) {
		entry.Rank = int(position)
	}
	if overall.TotalPoints != nil {
		entry.Coefficient = *overall.TotalPoints
	}
	return entry
}

func firstPresent(values ...*string) string {
	if v := firstPresentPtr(values...); v != nil {
		return *v
	}
	return ""
}

func firstPresentPtr(values ...*string) *string {
	for _, value := range values {
		if v := nonEmpty(value); v != nil {
			return v
		}
	}
	return nil
}

func idString(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func idPtr(raw any) *string {
	value := idString(raw)
	if value == "" {
		return nil
	}
	return &value
}

func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
