package handler

import (
	"net/http"

	"livesystem/internal/repository"
	"livesystem/internal/service"
	"livesystem/pkg/response"
)

// 领域错误到响应的兜底映射；handler 里没显式 switch 到的错误走这里
func init() {
	notFound := []error{
		repository.ErrUserNotFound,
		repository.ErrMemberNotFound,
		repository.ErrLiveNotFound,
		repository.ErrWatchLogNotFound,
		repository.ErrPrizeNotFound,
		repository.ErrOrderNotFound,
		repository.ErrActivityNotFound,
		repository.ErrFamilyNotFound,
		repository.ErrFamilyMemberNotFound,
		repository.ErrContactNotFound,
		repository.ErrMarkNotFound,
		repository.ErrBadgeNotFound,
	}
	for _, err := range notFound {
		response.RegisterDomainError(err, http.StatusNotFound, response.CodeNotFound)
	}

	invalid := []error{
		repository.ErrInvalidAmount,
		repository.ErrUnknownCurrency,
		repository.ErrMarkTargetKind,
		service.ErrInvalidCount,
		service.ErrSelfTarget,
		service.ErrExchangePair,
	}
	for _, err := range invalid {
		response.RegisterDomainError(err, http.StatusBadRequest, response.CodeInvalidParams)
	}

	duplicate := []error{
		repository.ErrMarkDuplicate,
		repository.ErrFamilyMemberExists,
		repository.ErrParticipationConflict,
		repository.ErrRechargeDuplicate,
		repository.ErrFamilyNameTaken,
	}
	for _, err := range duplicate {
		response.RegisterDomainError(err, http.StatusBadRequest, response.CodeDuplicate)
	}

	conflict := []error{
		repository.ErrLiveOver,
		repository.ErrActivitySettled,
		repository.ErrFamilyStatusInvalid,
		repository.ErrMissionLocked,
		service.ErrFamilyAlreadyJoined,
		service.ErrActivityNotRunning,
		service.ErrGiftBusy,
		service.ErrStarBoxEmpty,
		service.ErrStickerExpired,
	}
	for _, err := range conflict {
		response.RegisterDomainError(err, http.StatusBadRequest, response.CodeStateConflict)
	}

	response.RegisterDomainError(repository.ErrInsufficientFunds, http.StatusBadRequest, response.CodeInsufficientFunds)
	response.RegisterDomainError(repository.ErrPrizePriceFrozen, http.StatusBadRequest, response.CodePriceFrozen)
	response.RegisterDomainError(service.ErrFamilyNoPermission, http.StatusForbidden, response.CodeStateConflict)
}
