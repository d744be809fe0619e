package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// ApprovalRequestService drives the approval request lifecycle. Every state
// mutation runs inside one transaction together with its decision row, audit
// row, share update and outbox event, guarded by the request's row version.
type ApprovalRequestService struct {
	requestDAO  RequestStore
	decisionDAO DecisionStore
	historyDAO  HistoryStore
	shareDAO    ShareStore
	policyDAO   PolicyStore
	documentDAO DocumentStore
	userDAO     UserStore
	outboxDAO   OutboxStore
	db          *database.DB
	cfg         *config.Config
	logger      *logrus.Logger
}

// NewApprovalRequestService creates a new ApprovalRequestService
func NewApprovalRequestService(
	requestDAO RequestStore,
	decisionDAO DecisionStore,
	historyDAO HistoryStore,
	shareDAO ShareStore,
	policyDAO PolicyStore,
	documentDAO DocumentStore,
	userDAO UserStore,
	outboxDAO OutboxStore,
	db *database.DB,
	cfg *config.Config,
	logger *logrus.Logger,
) *ApprovalRequestService {
	return &ApprovalRequestService{
		requestDAO:  requestDAO,
		decisionDAO: decisionDAO,
		historyDAO:  historyDAO,
		shareDAO:    shareDAO,
		policyDAO:   policyDAO,
		documentDAO: documentDAO,
		userDAO:     userDAO,
		outboxDAO:   outboxDAO,
		db:          db,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateApprovalRequest opens a pending request for a share under the given
// policy. The request row, its audit entry, the share's pending state and the
// notification event commit atomically.
func (s *ApprovalRequestService) CreateApprovalRequest(ctx context.Context, shareID, policyID, reason string) (*models.ShareApprovalRequest, error) {
	if err := utils.ValidateShareID(shareID); err != nil {
		return nil, err
	}
	if err := utils.ValidatePolicyID(policyID); err != nil {
		return nil, err
	}

	share, err := s.shareDAO.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policyDAO.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.requestDAO.GetByShareID(ctx, shareID); err == nil && !existing.Status.IsTerminal() {
		return nil, apperrors.NewInvalidState("share already has a pending approval request")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	document, err := s.documentDAO.GetByID(ctx, share.DocumentID)
	if err != nil {
		return nil, err
	}

	approvers, err := s.resolveApprovers(ctx, policy)
	if err != nil {
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	request := &models.ShareApprovalRequest{
		RequestID:             utils.GenerateRequestID(),
		DocumentShareID:       shareID,
		ApprovalPolicyID:      policy.PolicyID,
		Status:                models.ApprovalStatusPending,
		RequestedByUserID:     share.CreatedByUserID,
		RequiredApprovalCount: policy.RequiredApprovalCount,
		CurrentApprovalCount:  0,
		AssignedApprovers:     approvers,
		ExpiresAt:             utils.HoursFromNow(policy.ApprovalTimeoutHours),
		CreatedTime:           now,
		UpdatedTime:           now,
	}
	if reason = utils.SanitizeString(reason); reason != "" {
		request.RequestReason = &reason
	}

	categoryName := ""
	if document.CategoryID != nil {
		if category, err := s.documentDAO.GetCategoryByID(ctx, *document.CategoryID); err == nil {
			categoryName = category.Name
		}
	}

	err = s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if err := s.requestDAO.CreateWithTx(ctx, tx, request); err != nil {
			return err
		}
		if err := s.historyDAO.CreateWithTx(ctx, tx, &models.ApprovalHistory{
			HistoryID:  utils.GenerateHistoryID(),
			RequestID:  request.RequestID,
			Action:     models.HistoryActionRequested,
			ActorID:    share.CreatedByUserID,
			Notes:      request.RequestReason,
			ActionTime: now,
		}); err != nil {
			return err
		}
		if err := s.shareDAO.UpdateApprovalStateWithTx(ctx, tx, shareID, true, models.ApprovalStatusPending, false, now); err != nil {
			return err
		}
		return s.appendOutbox(ctx, tx, models.EventApprovalRequestCreated, models.ApprovalRequestCreatedEvent{
			RequestID:         request.RequestID,
			ShareID:           share.ShareID,
			ShareCode:         share.ShareCode,
			PolicyID:          policy.PolicyID,
			PolicyName:        policy.Name,
			DocumentName:      document.Name,
			CategoryName:      categoryName,
			FileSizeBytes:     document.SizeBytes,
			RequesterUserID:   share.CreatedByUserID,
			RequestReason:     reason,
			AssignedApprovers: []string(approvers),
			ExpiresAt:         request.ExpiresAt,
		}, now)
	})
	if err != nil {
		s.logger.WithError(err).WithField("share_id", shareID).Error("Failed to create approval request")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": request.RequestID,
		"share_id":   shareID,
		"policy_id":  policy.PolicyID,
		"expires_at": request.ExpiresAt,
	}).Info("Created approval request")
	return request, nil
}

// ProcessApproval records an approver's verdict on a pending request. An
// approval below the required count only raises the tally; the quorum-reaching
// approval and any rejection move the request to its terminal state and flip
// the share accordingly.
func (s *ApprovalRequestService) ProcessApproval(ctx context.Context, requestID string, decision models.DecisionValue, comment, approverUserID string) (*models.ShareApprovalRequest, error) {
	if err := utils.ValidateRequestID(requestID); err != nil {
		return nil, err
	}
	if err := utils.ValidateUserID(approverUserID); err != nil {
		return nil, err
	}
	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid decision value: %s", decision))
	}
	comment = utils.SanitizeString(comment)

	var request *models.ShareApprovalRequest
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		var err error
		request, err = s.requestDAO.GetByIDWithTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		now := utils.GetCurrentTimeMillis()
		if request.Status != models.ApprovalStatusPending {
			return apperrors.NewInvalidState(fmt.Sprintf("approval request is %s and cannot accept decisions", request.Status))
		}
		if now > request.ExpiresAt {
			return apperrors.NewInvalidState("approval request has expired")
		}
		if !request.AssignedApprovers.IsEmpty() && !request.AssignedApprovers.Contains(approverUserID) {
			return apperrors.NewInvalidState("user is not an assigned approver for this request")
		}
		already, err := s.decisionDAO.ExistsForApproverWithTx(ctx, tx, requestID, approverUserID)
		if err != nil {
			return err
		}
		if already {
			return apperrors.NewInvalidState("approver has already recorded a decision for this request")
		}

		decisionRow := &models.ApprovalDecision{
			DecisionID:     utils.GenerateDecisionID(),
			RequestID:      requestID,
			ApproverUserID: approverUserID,
			Decision:       decision,
			DecidedTime:    now,
		}
		historyRow := &models.ApprovalHistory{
			HistoryID:  utils.GenerateHistoryID(),
			RequestID:  requestID,
			ActorID:    approverUserID,
			ActionTime: now,
		}
		if comment != "" {
			decisionRow.Comment = &comment
			historyRow.Notes = &comment
		}

		if decision == models.DecisionApproved {
			historyRow.Action = models.HistoryActionApproved
			request.CurrentApprovalCount++
			if request.CurrentApprovalCount >= request.RequiredApprovalCount {
				request.Status = models.ApprovalStatusApproved
				request.ProcessedAt = &now
			}
		} else {
			historyRow.Action = models.HistoryActionRejected
			request.Status = models.ApprovalStatusRejected
			request.ProcessedAt = &now
		}
		if request.Status.IsTerminal() && comment != "" {
			request.FinalComment = &comment
		}
		request.UpdatedTime = now

		if err := s.decisionDAO.CreateWithTx(ctx, tx, decisionRow); err != nil {
			return err
		}
		if err := s.historyDAO.CreateWithTx(ctx, tx, historyRow); err != nil {
			return err
		}
		if err := s.requestDAO.UpdateStateWithTx(ctx, tx, request); err != nil {
			return err
		}
		if !request.Status.IsTerminal() {
			return nil
		}
		return s.finalizeShare(ctx, tx, request, decision, comment, approverUserID, now)
	})
	if err != nil {
		if apperrors.IsConcurrency(err) {
			s.logger.WithField("request_id", requestID).Warn("Concurrent decision detected on approval request")
		} else {
			s.logger.WithError(err).WithField("request_id", requestID).Error("Failed to process approval decision")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"decision":   decision,
		"status":     request.Status,
		"approvals":  request.CurrentApprovalCount,
	}).Info("Processed approval decision")
	return request, nil
}

// finalizeShare flips the share to its terminal state and appends the
// notification events inside the caller's transaction.
func (s *ApprovalRequestService) finalizeShare(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest, decision models.DecisionValue, comment, approverUserID string, now int64) error {
	share, err := s.shareDAO.GetByIDWithTx(ctx, tx, request.DocumentShareID)
	if err != nil {
		return err
	}
	active := request.Status == models.ApprovalStatusApproved
	if err := s.shareDAO.UpdateApprovalStateWithTx(ctx, tx, share.ShareID, true, request.Status, active, now); err != nil {
		return err
	}

	documentName := ""
	if document, err := s.documentDAO.GetByID(ctx, share.DocumentID); err == nil {
		documentName = document.Name
	}
	if err := s.appendOutbox(ctx, tx, models.EventApprovalDecisionMade, models.ApprovalDecisionMadeEvent{
		RequestID:       request.RequestID,
		ShareID:         share.ShareID,
		ShareCode:       share.ShareCode,
		DocumentName:    documentName,
		Decision:        decision,
		FinalStatus:     request.Status,
		Comment:         comment,
		ApproverUserID:  approverUserID,
		RequesterUserID: request.RequestedByUserID,
	}, now); err != nil {
		return err
	}
	if !active || share.Recipients.IsEmpty() {
		return nil
	}
	// The share link was held back while approval was pending; deliver it now.
	return s.appendOutbox(ctx, tx, models.EventDocumentShareCreated, models.DocumentShareCreatedEvent{
		ShareID:         share.ShareID,
		ShareCode:       share.ShareCode,
		DocumentName:    documentName,
		RequesterUserID: share.CreatedByUserID,
		Recipients:      []string(share.Recipients),
	}, now)
}

// CanUserApprove reports whether the user may currently record a decision on
// the request. Missing requests, terminal or expired requests and repeat
// approvers all answer false rather than erroring.
func (s *ApprovalRequestService) CanUserApprove(ctx context.Context, requestID, userID string) (bool, error) {
	if requestID == "" || userID == "" {
		return false, nil
	}

	request, err := s.requestDAO.GetByID(ctx, requestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if request.Status != models.ApprovalStatusPending {
		return false, nil
	}
	if utils.GetCurrentTimeMillis() > request.ExpiresAt {
		return false, nil
	}
	already, err := s.decisionDAO.ExistsForApprover(ctx, requestID, userID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}
	if request.AssignedApprovers.IsEmpty() {
		return true, nil
	}
	return request.AssignedApprovers.Contains(userID), nil
}

// GetRequest returns a request with its decision log and audit trail
func (s *ApprovalRequestService) GetRequest(ctx context.Context, requestID string) (*models.ApprovalRequestResponse, error) {
	if err := utils.ValidateRequestID(requestID); err != nil {
		return nil, err
	}

	request, err := s.requestDAO.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	decisions, err := s.decisionDAO.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	history, err := s.historyDAO.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &models.ApprovalRequestResponse{
		ShareApprovalRequest: request,
		Decisions:            decisions,
		History:              history,
	}, nil
}

// GetRequestForShare returns the approval request attached to a share
func (s *ApprovalRequestService) GetRequestForShare(ctx context.Context, shareID string) (*models.ShareApprovalRequest, error) {
	if err := utils.ValidateShareID(shareID); err != nil {
		return nil, err
	}
	return s.requestDAO.GetByShareID(ctx, shareID)
}

// ListPendingRequests returns pending requests with the total count
func (s *ApprovalRequestService) ListPendingRequests(ctx context.Context, limit, offset int) ([]models.ShareApprovalRequest, int, error) {
	limit = utils.ValidateLimit(limit)
	offset = utils.ValidateOffset(offset)
	return s.requestDAO.ListByStatus(ctx, models.ApprovalStatusPending, limit, offset)
}

// ProcessExpiredRequests moves every pending request whose deadline has
// passed to Expired, deactivating the attached shares. All transitions of one
// sweep commit in a single transaction. Returns the number of requests
// expired.
func (s *ApprovalRequestService) ProcessExpiredRequests(ctx context.Context) (int, error) {
	expired := 0
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		now := utils.GetCurrentTimeMillis()
		requests, err := s.requestDAO.GetExpiredPendingWithTx(ctx, tx, now)
		if err != nil {
			return err
		}
		for i := range requests {
			request := &requests[i]
			request.Status = models.ApprovalStatusExpired
			request.ProcessedAt = &now
			request.UpdatedTime = now
			if err := s.requestDAO.UpdateStateWithTx(ctx, tx, request); err != nil {
				return err
			}
			if err := s.historyDAO.CreateWithTx(ctx, tx, &models.ApprovalHistory{
				HistoryID:  utils.GenerateHistoryID(),
				RequestID:  request.RequestID,
				Action:     models.HistoryActionExpired,
				ActorID:    models.SystemActor,
				ActionTime: now,
			}); err != nil {
				return err
			}
			if err := s.shareDAO.UpdateApprovalStateWithTx(ctx, tx, request.DocumentShareID, true, models.ApprovalStatusExpired, false, now); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired overdue approval requests")
	}
	return expired, nil
}

// resolveApprovers snapshots the approver list for a new request: an explicit
// policy user filter wins, otherwise the first configured approver role with
// members. An empty result means any authorized approver may act.
func (s *ApprovalRequestService) resolveApprovers(ctx context.Context, policy *models.ApprovalPolicy) (models.StringSet, error) {
	if !policy.UserFilter.IsEmpty() {
		return policy.UserFilter, nil
	}
	for _, role := range s.cfg.Share.ApproverRoles {
		members, err := s.userDAO.GetRoleMemberIDs(ctx, role)
		if err != nil {
			s.logger.WithError(err).WithField("role", role).Error("Failed to resolve approver role members")
			return nil, err
		}
		if len(members) > 0 {
			return models.NewStringSet(members...), nil
		}
	}
	return nil, nil
}

func (s *ApprovalRequestService) appendOutbox(ctx context.Context, tx *database.Transaction, eventType models.EventType, payload interface{}, now int64) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return s.outboxDAO.AppendWithTx(ctx, tx, &models.NotificationEvent{
		EventID:     utils.GenerateEventID(),
		EventType:   eventType,
		Payload:     models.JSON(raw),
		Status:      models.EventStatusPending,
		CreatedTime: now,
		UpdatedTime: now,
	})
}
