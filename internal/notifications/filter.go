package notifications

import (
	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
)

// SkipReason tags the suppression rule that matched a candidate
type SkipReason string

const (
	SkipSelf             SkipReason = "self"
	SkipBlocked          SkipReason = "blocked"
	SkipFollowersOff     SkipReason = "followers_disabled"
	SkipNonFollowersOff  SkipReason = "non_followers_disabled"
	SkipFollowsOff       SkipReason = "follows_disabled"
	SkipNonFollowsOff    SkipReason = "non_follows_disabled"
	SkipRecentlyFollowed SkipReason = "recently_followed"
)

// Filter decides whether a notification must be suppressed for a candidate.
// It is a pure decision function, but the relationship predicates resolve
// against current state at filter time.
type Filter struct {
	followRepository       repositories.FollowRepository
	notificationRepository repositories.NotificationRepository
}

// NewFilter creates a new Filter
func NewFilter(followRepo repositories.FollowRepository, notificationRepo repositories.NotificationRepository) *Filter {
	return &Filter{
		followRepository:       followRepo,
		notificationRepository: notificationRepo,
	}
}

// skipPredicate is one independent suppression rule
type skipPredicate struct {
	reason  SkipReason
	matches func(activity *models.Activity, candidate *models.User) (bool, error)
}

// ShouldSkip evaluates the ordered predicates and short-circuits on the
// first match. Evaluation order never changes the outcome, only how many
// relationship lookups run.
func (f *Filter) ShouldSkip(activity *models.Activity, candidate *models.User) (bool, SkipReason, error) {
	for _, predicate := range f.predicates() {
		match, err := predicate.matches(activity, candidate)
		if err != nil {
			return false, "", err
		}
		if match {
			return true, predicate.reason, nil
		}
	}
	return false, "", nil
}

func (f *Filter) predicates() []skipPredicate {
	return []skipPredicate{
		{SkipSelf, f.isSelf},
		{SkipBlocked, f.isBlocked},
		{SkipFollowersOff, f.followersDisabled},
		{SkipNonFollowersOff, f.nonFollowersDisabled},
		{SkipFollowsOff, f.followsDisabled},
		{SkipNonFollowsOff, f.nonFollowsDisabled},
		{SkipRecentlyFollowed, f.recentlyFollowed},
	}
}

// isSelf: never notify the actor about their own activity
func (f *Filter) isSelf(activity *models.Activity, candidate *models.User) (bool, error) {
	return activity.ActorID == candidate.ID, nil
}

// isBlocked: the candidate blocks the actor or the actor's instance
func (f *Filter) isBlocked(activity *models.Activity, candidate *models.User) (bool, error) {
	if activity.Actor == nil {
		return false, nil
	}
	return candidate.BlocksActor(activity.Actor), nil
}

// followersDisabled: "followers" notifications off and the actor follows the candidate
func (f *Filter) followersDisabled(activity *models.Activity, candidate *models.User) (bool, error) {
	if candidate.NotificationSettings.Followers {
		return false, nil
	}
	return f.followRepository.IsFollowing(activity.ActorID, candidate.ID)
}

// nonFollowersDisabled: "non_followers" notifications off and the actor does not follow the candidate
func (f *Filter) nonFollowersDisabled(activity *models.Activity, candidate *models.User) (bool, error) {
	if candidate.NotificationSettings.NonFollowers {
		return false, nil
	}
	following, err := f.followRepository.IsFollowing(activity.ActorID, candidate.ID)
	if err != nil {
		return false, err
	}
	return !following, nil
}

// followsDisabled: "follows" notifications off and the candidate follows the actor
func (f *Filter) followsDisabled(activity *models.Activity, candidate *models.User) (bool, error) {
	if candidate.NotificationSettings.Follows {
		return false, nil
	}
	return f.followRepository.IsFollowing(candidate.ID, activity.ActorID)
}

// nonFollowsDisabled: "non_follows" notifications off and the candidate does not follow the actor
func (f *Filter) nonFollowsDisabled(activity *models.Activity, candidate *models.User) (bool, error) {
	if candidate.NotificationSettings.NonFollows {
		return false, nil
	}
	following, err := f.followRepository.IsFollowing(candidate.ID, activity.ActorID)
	if err != nil {
		return false, err
	}
	return !following, nil
}

// recentlyFollowed: a Follow activity whose actor already produced a follow
// notification for this candidate. The lookback runs over the candidate's
// whole current notification list, with no recency window.
func (f *Filter) recentlyFollowed(activity *models.Activity, candidate *models.User) (bool, error) {
	if activity.Type != models.ActivityFollow {
		return false, nil
	}
	return f.notificationRepository.HasFollowNotification(candidate.ID, activity.ActorID)
}
