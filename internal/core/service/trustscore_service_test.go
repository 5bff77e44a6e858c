package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the engine tests
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubCredentialRepo struct {
	creds map[string]*domain.Credential // keyed by type:id
	seq   int
	err   error // if set, every call returns this error
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func credKey(t domain.CredentialType, id string) string {
	return string(t) + ":" + id
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	clone := *c
	if c.VerifiedAt != nil {
		ts := *c.VerifiedAt
		clone.VerifiedAt = &ts
	}
	return &clone
}

func (r *stubCredentialRepo) Create(_ context.Context, c *domain.Credential) error {
	if r.err != nil {
		return r.err
	}
	r.seq++
	c.ID = fmt.Sprintf("cred_%d", r.seq)
	r.creds[credKey(c.Type, c.ID)] = cloneCredential(c)
	return nil
}

func (r *stubCredentialRepo) FindByID(_ context.Context, credType domain.CredentialType, id string) (*domain.Credential, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.creds[credKey(credType, id)]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return cloneCredential(c), nil
}

func (r *stubCredentialRepo) UpdateStatus(_ context.Context, c *domain.Credential) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.creds[credKey(c.Type, c.ID)]; !ok {
		return domain.ErrCredentialNotFound
	}
	r.creds[credKey(c.Type, c.ID)] = cloneCredential(c)
	return nil
}

func (r *stubCredentialRepo) ListByOwner(_ context.Context, credType domain.CredentialType, ownerID string) ([]*domain.Credential, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Credential
	for _, c := range r.creds {
		if c.Type == credType && c.OwnerID == ownerID {
			out = append(out, cloneCredential(c))
		}
	}
	return out, nil
}

// add seeds a credential directly, bypassing the service layer.
func (r *stubCredentialRepo) add(credType domain.CredentialType, ownerID string, status domain.CredentialStatus) *domain.Credential {
	r.seq++
	c := &domain.Credential{
		ID:      fmt.Sprintf("cred_%d", r.seq),
		Type:    credType,
		OwnerID: ownerID,
		Title:   "seeded",
		Status:  status,
	}
	if status == domain.CredentialVerified {
		ts := time.Now().UTC()
		c.VerifiedAt = &ts
	}
	r.creds[credKey(credType, c.ID)] = c
	return cloneCredential(c)
}

type stubUserRepo struct {
	users       map[string]*domain.User
	scoreWrites int
	scoreErr    error
}

func newStubUserRepo(ids ...string) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, id := range ids {
		r.users[id] = &domain.User{ID: id, Username: id, Role: domain.RoleMember, Status: domain.AccountActive}
	}
	return r
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) UpdateTrustScore(_ context.Context, userID string, score int) error {
	if r.scoreErr != nil {
		return r.scoreErr
	}
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TrustScore = score
	r.scoreWrites++
	return nil
}

func (r *stubUserRepo) UpdateStatus(_ context.Context, userID string, status domain.AccountStatus) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *stubUserRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubScoreCache struct {
	entries       map[string]*domain.TrustScoreBreakdown
	invalidations int
}

func newStubScoreCache() *stubScoreCache {
	return &stubScoreCache{entries: make(map[string]*domain.TrustScoreBreakdown)}
}

func (c *stubScoreCache) Get(_ context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	return c.entries[userID], nil
}

func (c *stubScoreCache) Set(_ context.Context, userID string, b *domain.TrustScoreBreakdown) error {
	clone := *b
	c.entries[userID] = &clone
	return nil
}

func (c *stubScoreCache) Invalidate(_ context.Context, userID string) error {
	delete(c.entries, userID)
	c.invalidations++
	return nil
}

func newScoreService(creds *stubCredentialRepo, users *stubUserRepo) ports.TrustScoreService {
	return NewTrustScoreService(creds, users, nil, discardLogger)
}

// ---------------------------------------------------------------------------
// CalculateTrustScore
// ---------------------------------------------------------------------------

func TestTrustScore_NewUserScoresBaseOnly(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	svc := newScoreService(creds, users)

	b, err := svc.CalculateTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TotalScore != 20 {
		t.Errorf("expected base score 20, got %d", b.TotalScore)
	}
	if b.Level != domain.LevelBuilding {
		t.Errorf("expected level %q, got %q", domain.LevelBuilding, b.Level)
	}
	if !b.NoCertifications {
		t.Error("expected no_certifications marker for empty portfolio")
	}
	if b.Certifications.Verified || b.Education.Verified || b.Experience.Verified {
		t.Error("no category may be verified for an empty portfolio")
	}
}

func TestTrustScore_SingleVerifiedCertification(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	svc := newScoreService(creds, users)

	b, err := svc.CalculateTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TotalScore != 20+domain.CertificationWeight {
		t.Errorf("expected %d, got %d", 20+domain.CertificationWeight, b.TotalScore)
	}
	if !b.Certifications.Verified {
		t.Error("category must be verified when all certifications are verified")
	}
	if b.NoCertifications {
		t.Error("no_certifications must be false when a certification exists")
	}
	if b.Certifications.Count != 1 || b.Certifications.Total != 1 {
		t.Errorf("wrong counts: %d/%d", b.Certifications.Count, b.Certifications.Total)
	}
}

func TestTrustScore_CategoryCaps(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	for i := 0; i < 5; i++ {
		creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	}
	for i := 0; i < 4; i++ {
		creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)
	}
	for i := 0; i < 4; i++ {
		creds.add(domain.TypeWorkExperience, "u1", domain.CredentialVerified)
	}
	svc := newScoreService(creds, users)

	b, err := svc.CalculateTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Certifications.Score != domain.CertificationCap {
		t.Errorf("certification score must cap at %d, got %d", domain.CertificationCap, b.Certifications.Score)
	}
	if b.Education.Score != domain.EducationCap {
		t.Errorf("education score must cap at %d, got %d", domain.EducationCap, b.Education.Score)
	}
	if b.Experience.Score != domain.ExperienceCap {
		t.Errorf("experience score must cap at %d, got %d", domain.ExperienceCap, b.Experience.Score)
	}
	// 20 + 30 + 35 + 35 = 120 raw; the global clamp is load-bearing.
	if b.TotalScore != domain.ScoreMax {
		t.Errorf("total must clamp at %d, got %d", domain.ScoreMax, b.TotalScore)
	}
	if b.Level != domain.LevelExcellent {
		t.Errorf("expected level %q, got %q", domain.LevelExcellent, b.Level)
	}
}

func TestTrustScore_LevelThresholds(t *testing.T) {
	// 20 base + 2 verified certifications (30) = 50 → Good, exactly at the boundary.
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	svc := newScoreService(creds, users)

	b, _ := svc.CalculateTrustScore(context.Background(), "u1")
	if b.TotalScore != 50 || b.Level != domain.LevelGood {
		t.Fatalf("expected 50/Good, got %d/%s", b.TotalScore, b.Level)
	}

	// Add 2 verified education records (+35, capped) = 85 → Excellent.
	creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)
	creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)

	b, _ = svc.CalculateTrustScore(context.Background(), "u1")
	if b.TotalScore != 85 || b.Level != domain.LevelExcellent {
		t.Fatalf("expected 85/Excellent, got %d/%s", b.TotalScore, b.Level)
	}
}

func TestTrustScore_CertificationFlagRequiresAllVerified(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	creds.add(domain.TypeCertification, "u1", domain.CredentialPending)
	svc := newScoreService(creds, users)

	b, _ := svc.CalculateTrustScore(context.Background(), "u1")
	if b.Certifications.Verified {
		t.Error("flag must be false while any certification is unverified")
	}
	if b.NoCertifications {
		t.Error("zero verified is distinct from zero submitted")
	}
}

func TestTrustScore_EducationFlagNeedsOneVerified(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)
	creds.add(domain.TypeEducation, "u1", domain.CredentialPending)
	creds.add(domain.TypeEducation, "u1", domain.CredentialRejected)
	svc := newScoreService(creds, users)

	b, _ := svc.CalculateTrustScore(context.Background(), "u1")
	if !b.Education.Verified {
		t.Error("one verified education record must flip the flag")
	}
	if b.Education.Score != domain.EducationWeight {
		t.Errorf("only verified records score: expected %d, got %d", domain.EducationWeight, b.Education.Score)
	}
}

func TestTrustScore_VerifyingNeverDecreases(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	svc := newScoreService(creds, users)

	prev := 0
	seed := []domain.CredentialType{
		domain.TypeCertification, domain.TypeCertification, domain.TypeCertification,
		domain.TypeEducation, domain.TypeEducation,
		domain.TypeWorkExperience, domain.TypeWorkExperience,
	}
	for _, ct := range seed {
		creds.add(ct, "u1", domain.CredentialVerified)
		b, err := svc.CalculateTrustScore(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.TotalScore < prev {
			t.Fatalf("score decreased from %d to %d after verifying a %s", prev, b.TotalScore, ct)
		}
		prev = b.TotalScore
	}
}

func TestTrustScore_UnknownUser(t *testing.T) {
	svc := newScoreService(newStubCredentialRepo(), newStubUserRepo())

	if _, err := svc.CalculateTrustScore(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTrustScore_CacheHitSkipsComputation(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	cache := newStubScoreCache()
	svc := NewTrustScoreService(creds, users, cache, discardLogger)

	first, err := svc.CalculateTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.entries["u1"] == nil {
		t.Fatal("expected cache to be populated on miss")
	}

	// Change stored state without invalidating; the cached value must win.
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	second, err := svc.CalculateTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalScore != first.TotalScore {
		t.Fatalf("expected cached score %d, got %d", first.TotalScore, second.TotalScore)
	}
}

func TestTrustScoreProfile_SuspendedHidesBreakdown(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	users.users["u1"].Status = domain.AccountSuspended
	svc := newScoreService(creds, users)

	profile, err := svc.GetTrustScoreProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.Suspended {
		t.Error("expected suspended profile")
	}
	if profile.Breakdown != nil {
		t.Error("suspended profiles must not expose a breakdown")
	}

	users.users["u1"].Status = domain.AccountActive
	profile, err = svc.GetTrustScoreProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Suspended || profile.Breakdown == nil {
		t.Fatal("active profile must expose a breakdown")
	}
	if profile.Breakdown.TotalScore != 35 {
		t.Errorf("expected 35, got %d", profile.Breakdown.TotalScore)
	}
}

// ---------------------------------------------------------------------------
// GetVerificationSummary
// ---------------------------------------------------------------------------

func TestVerificationSummary_Counts(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	creds.add(domain.TypeCertification, "u1", domain.CredentialPending)
	creds.add(domain.TypeEducation, "u1", domain.CredentialRejected)
	creds.add(domain.TypeWorkExperience, "u1", domain.CredentialVerified)
	creds.add(domain.TypeWorkExperience, "u1", domain.CredentialVerified)
	svc := newScoreService(creds, users)

	sum, err := svc.GetVerificationSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Certifications != (ports.CategoryCounts{Verified: 1, Pending: 1, Total: 2}) {
		t.Errorf("certification counts wrong: %+v", sum.Certifications)
	}
	if sum.Educations != (ports.CategoryCounts{Rejected: 1, Total: 1}) {
		t.Errorf("education counts wrong: %+v", sum.Educations)
	}
	if sum.WorkExperiences != (ports.CategoryCounts{Verified: 2, Total: 2}) {
		t.Errorf("experience counts wrong: %+v", sum.WorkExperiences)
	}
}

func TestVerificationSummary_AgreesWithBreakdown(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)
	creds.add(domain.TypeEducation, "u1", domain.CredentialPending)
	svc := newScoreService(creds, users)

	sum, _ := svc.GetVerificationSummary(context.Background(), "u1")
	b, _ := svc.CalculateTrustScore(context.Background(), "u1")

	if sum.Certifications.Verified != b.Certifications.Count {
		t.Errorf("certification counts diverge: summary %d, breakdown %d", sum.Certifications.Verified, b.Certifications.Count)
	}
	if sum.Educations.Verified != b.Education.Count {
		t.Errorf("education counts diverge: summary %d, breakdown %d", sum.Educations.Verified, b.Education.Count)
	}
}

// ---------------------------------------------------------------------------
// UpdateUserTrustScore
// ---------------------------------------------------------------------------

func TestUpdateUserTrustScore_PersistsAndReturns(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeCertification, "u1", domain.CredentialVerified)
	svc := newScoreService(creds, users)

	score, err := svc.UpdateUserTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 35 {
		t.Errorf("expected 35, got %d", score)
	}
	if users.users["u1"].TrustScore != 35 {
		t.Errorf("score not persisted: %d", users.users["u1"].TrustScore)
	}
}

func TestUpdateUserTrustScore_Idempotent(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	creds.add(domain.TypeEducation, "u1", domain.CredentialVerified)
	svc := newScoreService(creds, users)

	first, err := svc.UpdateUserTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	second, err := svc.UpdateUserTrustScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if first != second {
		t.Fatalf("recompute not idempotent: %d then %d", first, second)
	}
	if users.users["u1"].TrustScore != first {
		t.Fatalf("stored score diverged: %d", users.users["u1"].TrustScore)
	}
}

func TestUpdateUserTrustScore_RepoError(t *testing.T) {
	creds := newStubCredentialRepo()
	users := newStubUserRepo("u1")
	users.scoreErr = errors.New("db unavailable")
	svc := newScoreService(creds, users)

	if _, err := svc.UpdateUserTrustScore(context.Background(), "u1"); err == nil {
		t.Fatal("expected error when score write fails")
	}
}
