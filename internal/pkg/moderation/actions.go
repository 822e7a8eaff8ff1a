package moderation

import (
	"strings"

	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

type ListingAction string

const (
	ListingApprove   ListingAction = "approve"
	ListingReject    ListingAction = "reject"
	ListingFeature   ListingAction = "feature"
	ListingUnfeature ListingAction = "unfeature"
	ListingDelete    ListingAction = "delete"
)

var listingActions = []ListingAction{ListingApprove, ListingReject, ListingFeature, ListingUnfeature, ListingDelete}

// ParseListingAction maps raw onto the closed set of listing actions.
func ParseListingAction(raw string) (ListingAction, error) {
	for _, a := range listingActions {
		if string(a) == strings.TrimSpace(raw) {
			return a, nil
		}
	}
	return "", invalidAction(raw)
}

type ReportAction string

const (
	ReportValidate   ReportAction = "validate"
	ReportInvalidate ReportAction = "invalidate"
	ReportDelete     ReportAction = "delete"
)

var reportActions = []ReportAction{ReportValidate, ReportInvalidate, ReportDelete}

func ParseReportAction(raw string) (ReportAction, error) {
	for _, a := range reportActions {
		if string(a) == strings.TrimSpace(raw) {
			return a, nil
		}
	}
	return "", invalidAction(raw)
}

type UserAction string

const (
	UserBan        UserAction = "ban"
	UserActivate   UserAction = "activate"
	UserChangeRole UserAction = "changeRole"
	UserUpdate     UserAction = "update"
)

var userActions = []UserAction{UserBan, UserActivate, UserChangeRole, UserUpdate}

func ParseUserAction(raw string) (UserAction, error) {
	for _, a := range userActions {
		if string(a) == strings.TrimSpace(raw) {
			return a, nil
		}
	}
	return "", invalidAction(raw)
}

func invalidAction(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperror.NewValidation("action is required")
	}
	return apperror.Newf(apperror.Validation, "invalid action %q", raw)
}

// Command is the body of a moderation PATCH request.
type Command struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
