package services

import (
	"context"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/app/repositories"
	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/filestorage"
	"thesisflow/internal/pkg/ws"
)

// In-memory fakes for the store interfaces. They keep entities by value so
// services only observe mutations that went through Update, like a real
// database.

type fakeUserStore struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[int64]models.User{}, nextID: 1}
	for _, u := range users {
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
		s.users[u.ID] = *u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetByRole(_ context.Context, roleType models.RoleType) ([]*models.User, error) {
	var out []*models.User
	for id := int64(1); id < s.nextID; id++ {
		u, ok := s.users[id]
		if ok && u.RoleType == roleType && u.IsActive {
			user := u
			out = append(out, &user)
		}
	}
	return out, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) (int64, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		if user.StudentNumber != nil && u.StudentNumber != nil && *u.StudentNumber == *user.StudentNumber {
			return 0, apperrors.ErrStudentNumberTaken
		}
	}
	id := s.nextID
	s.nextID++
	user.ID = id
	s.users[id] = *user
	return id, nil
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) StudentNumberExists(_ context.Context, studentNumber string) (bool, error) {
	for _, u := range s.users {
		if u.StudentNumber != nil && *u.StudentNumber == studentNumber {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, userID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.EmailVerified = true
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) GetAll(_ context.Context, roleType *models.RoleType, isActive *bool, page, pageSize int) ([]*models.User, int, error) {
	var matched []*models.User
	for id := int64(1); id < s.nextID; id++ {
		u, ok := s.users[id]
		if !ok {
			continue
		}
		if roleType != nil && u.RoleType != *roleType {
			continue
		}
		if isActive != nil && u.IsActive != *isActive {
			continue
		}
		user := u
		matched = append(matched, &user)
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (s *fakeUserStore) CountByRole(_ context.Context) (map[models.RoleType]int, error) {
	counts := make(map[models.RoleType]int)
	for _, u := range s.users {
		counts[u.RoleType]++
	}
	return counts, nil
}

func (s *fakeUserStore) SetActive(_ context.Context, userID int64, isActive bool) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = isActive
	s.users[userID] = u
	return nil
}

type fakeThesisStore struct {
	theses    map[int64]models.Thesis
	nextID    int64
	updateErr error // injected failure for the next Update
}

func newFakeThesisStore(theses ...*models.Thesis) *fakeThesisStore {
	s := &fakeThesisStore{theses: map[int64]models.Thesis{}, nextID: 1}
	for _, t := range theses {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.theses[t.ID] = *t
	}
	return s
}

func (s *fakeThesisStore) Create(_ context.Context, thesis *models.Thesis) (int64, error) {
	id := s.nextID
	s.nextID++
	thesis.ID = id
	s.theses[id] = *thesis
	return id, nil
}

func (s *fakeThesisStore) GetByID(_ context.Context, id int64) (*models.Thesis, error) {
	t, ok := s.theses[id]
	if !ok {
		return nil, apperrors.ErrThesisNotFound
	}
	return &t, nil
}

func (s *fakeThesisStore) Update(_ context.Context, thesis *models.Thesis) error {
	if s.updateErr != nil {
		err := s.updateErr
		s.updateErr = nil
		return err
	}
	stored, ok := s.theses[thesis.ID]
	if !ok {
		return apperrors.ErrThesisNotFound
	}
	if stored.LockVersion != thesis.LockVersion {
		return apperrors.ErrStaleThesis
	}
	thesis.LockVersion++
	s.theses[thesis.ID] = *thesis
	return nil
}

func (s *fakeThesisStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.theses[id]; !ok {
		return apperrors.ErrThesisNotFound
	}
	delete(s.theses, id)
	return nil
}

func (s *fakeThesisStore) CountByStatus(_ context.Context) (map[models.ThesisStatus]int, error) {
	counts := make(map[models.ThesisStatus]int)
	for _, t := range s.theses {
		counts[t.Status]++
	}
	return counts, nil
}

func (s *fakeThesisStore) GetAll(_ context.Context, filter repositories.ThesisFilter, page, pageSize int) ([]*models.Thesis, int, error) {
	var matched []*models.Thesis
	for id := int64(1); id < s.nextID; id++ {
		t, ok := s.theses[id]
		if !ok {
			continue
		}
		if filter.StudentID != nil && t.StudentID != *filter.StudentID {
			continue
		}
		if filter.AdvisorID != nil && (t.AdvisorID == nil || *t.AdvisorID != *filter.AdvisorID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.ThesisType != nil && t.ThesisType != *filter.ThesisType {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(*filter.Search)) {
			continue
		}
		thesis := t
		matched = append(matched, &thesis)
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

type fakeFeedbackStore struct {
	feedback map[int64]models.Feedback
	nextID   int64
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{feedback: map[int64]models.Feedback{}, nextID: 1}
}

func (s *fakeFeedbackStore) Create(_ context.Context, feedback *models.Feedback) (int64, error) {
	id := s.nextID
	s.nextID++
	feedback.ID = id
	s.feedback[id] = *feedback
	return id, nil
}

func (s *fakeFeedbackStore) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	f, ok := s.feedback[id]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	return &f, nil
}

func (s *fakeFeedbackStore) GetByThesis(_ context.Context, thesisID int64) ([]*models.Feedback, error) {
	var out []*models.Feedback
	for id := s.nextID - 1; id >= 1; id-- {
		f, ok := s.feedback[id]
		if ok && f.ThesisID == thesisID {
			feedback := f
			out = append(out, &feedback)
		}
	}
	return out, nil
}

func (s *fakeFeedbackStore) Update(_ context.Context, feedback *models.Feedback) error {
	if _, ok := s.feedback[feedback.ID]; !ok {
		return apperrors.ErrFeedbackNotFound
	}
	s.feedback[feedback.ID] = *feedback
	return nil
}

type fakeNotificationStore struct {
	rows   []models.Notification
	nextID int64
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{nextID: 1}
}

func (s *fakeNotificationStore) Create(_ context.Context, n *models.Notification) (int64, error) {
	n.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, *n)
	return n.ID, nil
}

func (s *fakeNotificationStore) GetByUser(_ context.Context, userID int64, page, pageSize int) ([]*models.Notification, int, error) {
	var matched []*models.Notification
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].UserID == userID {
			n := s.rows[i]
			matched = append(matched, &n)
		}
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (s *fakeNotificationStore) UnreadCount(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range s.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, notificationID, userID int64) error {
	for i := range s.rows {
		if s.rows[i].ID == notificationID && s.rows[i].UserID == userID {
			s.rows[i].IsRead = true
			return nil
		}
	}
	return apperrors.NewNotFoundError("notification not found")
}

func (s *fakeNotificationStore) MarkAllRead(_ context.Context, userID int64) error {
	for i := range s.rows {
		if s.rows[i].UserID == userID {
			s.rows[i].IsRead = true
		}
	}
	return nil
}

// forUser returns the stored notifications addressed to one user
func (s *fakeNotificationStore) forUser(userID int64) []models.Notification {
	var out []models.Notification
	for _, n := range s.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakePusher struct {
	events []*ws.Event
}

func (p *fakePusher) Push(event *ws.Event) {
	p.events = append(p.events, event)
}

// fakeNotifier records workflow notification calls without persisting
// anything; used where the service under test is not the notification
// service itself.
type fakeNotifier struct {
	submissions      []int64 // thesis IDs announced to advisors
	feedbackProvided []int64
	statusChanges    []string
	advisorAssigned  []int64
}

func (n *fakeNotifier) NotifyNewSubmission(_ context.Context, thesis *models.Thesis, _ *models.User) {
	n.submissions = append(n.submissions, thesis.ID)
}

func (n *fakeNotifier) NotifyFeedbackProvided(_ context.Context, thesis *models.Thesis, _ *models.User) {
	n.feedbackProvided = append(n.feedbackProvided, thesis.ID)
}

func (n *fakeNotifier) NotifyStatusChange(_ context.Context, _ *models.Thesis, oldStatus, newStatus models.ThesisStatus) {
	n.statusChanges = append(n.statusChanges, string(oldStatus)+">"+string(newStatus))
}

func (n *fakeNotifier) NotifyAdvisorAssigned(_ context.Context, thesis *models.Thesis, _ *models.User) {
	n.advisorAssigned = append(n.advisorAssigned, thesis.ID)
}

func (n *fakeNotifier) List(context.Context, int64, int, int) (*dto.NotificationListResponse, error) {
	return &dto.NotificationListResponse{}, nil
}

func (n *fakeNotifier) UnreadCount(context.Context, int64) (int, error) { return 0, nil }
func (n *fakeNotifier) MarkRead(context.Context, int64, int64) error    { return nil }
func (n *fakeNotifier) MarkAllRead(context.Context, int64) error        { return nil }

type fakeEmailService struct {
	verifications []string // recipient emails
	feedbackMails []string
	statusMails   []string
	lastToken     string
}

func (s *fakeEmailService) SendVerificationEmail(toEmail, _, token string) error {
	s.verifications = append(s.verifications, toEmail)
	s.lastToken = token
	return nil
}

func (s *fakeEmailService) SendSubmissionEmail(toEmail, _, _ string) error {
	return nil
}

func (s *fakeEmailService) SendFeedbackEmail(toEmail, _, _, _ string) error {
	s.feedbackMails = append(s.feedbackMails, toEmail)
	return nil
}

func (s *fakeEmailService) SendStatusChangeEmail(toEmail, _, _, _ string) error {
	s.statusMails = append(s.statusMails, toEmail)
	return nil
}

type fakeStorage struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *fakeStorage) ValidateFile(fileHeader *multipart.FileHeader) error {
	return filestorage.ValidateFileHeader(fileHeader)
}

func (s *fakeStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (*filestorage.FileInfo, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if err := filestorage.ValidateFileHeader(fileHeader); err != nil {
		return nil, err
	}
	relPath := path.Join(subPath, fileHeader.Filename)
	s.saved = append(s.saved, relPath)
	return &filestorage.FileInfo{
		Path:     relPath,
		Filename: fileHeader.Filename,
		FileSize: fileHeader.Size,
		MimeType: "application/pdf",
	}, nil
}

func (s *fakeStorage) DeleteFile(relPath string) error {
	s.deleted = append(s.deleted, relPath)
	return nil
}

func (s *fakeStorage) FullPath(relPath string) string {
	return "/storage/" + relPath
}

type fakeTokenStore struct {
	tokens map[string]fakeToken
}

type fakeToken struct {
	userID     int64
	expiryDate time.Time
	isRevoked  bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]fakeToken{}}
}

func (s *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	s.tokens[token] = fakeToken{userID: userID, expiryDate: expiryDate}
	return nil
}

func (s *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, time.Time, bool, error) {
	t, ok := s.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return t.userID, t.expiryDate, t.isRevoked, nil
}

func (s *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	t, ok := s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.isRevoked = true
	s.tokens[token] = t
	return nil
}

func (s *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for value, t := range s.tokens {
		if t.userID == userID {
			t.isRevoked = true
			s.tokens[value] = t
		}
	}
	return nil
}

type fakeVerificationStore struct {
	tokens map[string]int64
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{tokens: map[string]int64{}}
}

func (s *fakeVerificationStore) CreateToken(_ context.Context, token string, userID int64, _ time.Time) error {
	s.tokens[token] = userID
	return nil
}

func (s *fakeVerificationStore) ConsumeToken(_ context.Context, token string) (int64, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return 0, apperrors.ErrInvalidEmailToken
	}
	delete(s.tokens, token)
	return userID, nil
}

// newFakeTxRunner returns a TxRunner that hands the fakes straight to fn.
// The fakes are not transactional, but the runner preserves the call shape
// the services expect.
func newFakeTxRunner(theses *fakeThesisStore, feedback *fakeFeedbackStore) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
		return fn(ctx, TxStores{Theses: theses, Feedback: feedback})
	}
}

func paginate[T any](items []*T, page, pageSize int) []*T {
	offset := (page - 1) * pageSize
	if offset >= len(items) {
		return nil
	}
	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
