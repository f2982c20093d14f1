package catalog

import "github.com/learnpath/backend/internal/models"

// Badge names the progress engine awards by. The registry rows are looked up
// by these names, so seed data and award sites must agree.
const (
	BadgeModuleCompleted = "Module Completed"

	BadgeBronzeLearner   = "Bronze Learner"
	BadgeSilverLearner   = "Silver Learner"
	BadgeGoldLearner     = "Gold Learner"
	BadgePlatinumLearner = "Platinum Learner"

	BadgeHighFive    = "High Five"
	BadgeScholar     = "Scholar"
	BadgeHalfCentury = "Half Century"
	BadgeCenturion   = "Centurion"
	BadgeUnstoppable = "Unstoppable"

	BadgeHatTrick    = "Hat Trick"
	BadgeOnARoll     = "On a Roll"
	BadgeTenStraight = "Ten Straight"

	BadgeFiveDayDevotion = "5-Day Devotion"
	BadgeMonthlyDevotion = "Monthly Devotion"

	BadgePerfectScore = "Perfect Score"

	BadgeSectionConqueror = "Section Conqueror"
	BadgeThemeChampion    = "Theme Champion"

	BadgeModuleCritic = "Module Critic"
	BadgeCommentator  = "Commentator"
	BadgeIdeaMachine  = "Idea Machine"
	BadgeBugHunter    = "Bug Hunter"
)

// DefaultBadges is the registry seed. Point values feed directly into the
// point ledger, so changing them changes scoring.
var DefaultBadges = []models.Badge{
	{Name: BadgeModuleCompleted, Description: "Completed a learning module", BadgeType: models.BadgeTypeModule, Points: 10},

	{Name: BadgeBronzeLearner, Description: "Complete your first module", BadgeType: models.BadgeTypeModuleCount, Points: 10},
	{Name: BadgeSilverLearner, Description: "Complete 3 modules", BadgeType: models.BadgeTypeModuleCount, Points: 20},
	{Name: BadgeGoldLearner, Description: "Complete 5 modules", BadgeType: models.BadgeTypeModuleCount, Points: 30},
	{Name: BadgePlatinumLearner, Description: "Complete 10 modules", BadgeType: models.BadgeTypeModuleCount, Points: 50},

	{Name: BadgeHighFive, Description: "Reach exactly 5 completed modules", BadgeType: models.BadgeTypeModuleMilestone, Points: 15},
	{Name: BadgeScholar, Description: "Reach 20 completed modules", BadgeType: models.BadgeTypeModuleMilestone, Points: 40},
	{Name: BadgeHalfCentury, Description: "Reach 50 completed modules", BadgeType: models.BadgeTypeModuleMilestone, Points: 75},
	{Name: BadgeCenturion, Description: "Reach 100 completed modules", BadgeType: models.BadgeTypeModuleMilestone, Points: 100},
	{Name: BadgeUnstoppable, Description: "Reach 150 completed modules", BadgeType: models.BadgeTypeModuleMilestone, Points: 150},

	{Name: BadgeHatTrick, Description: "Complete 3 modules in a row", BadgeType: models.BadgeTypeConsecutive, Points: 15},
	{Name: BadgeOnARoll, Description: "Complete 5 modules in a row", BadgeType: models.BadgeTypeConsecutive, Points: 25},
	{Name: BadgeTenStraight, Description: "Complete 10 modules in a row", BadgeType: models.BadgeTypeConsecutive, Points: 50},

	{Name: BadgeFiveDayDevotion, Description: "Keep a 5-day learning streak", BadgeType: models.BadgeTypeStreak, Points: 25},
	{Name: BadgeMonthlyDevotion, Description: "Keep a 30-day learning streak", BadgeType: models.BadgeTypeStreak, Points: 100},

	{Name: BadgePerfectScore, Description: "Score a perfect 10", BadgeType: models.BadgeTypeScore, Points: 20},

	{Name: BadgeSectionConqueror, Description: "Complete every module in a section", BadgeType: models.BadgeTypeSectionCompletion, Points: 50},
	{Name: BadgeThemeChampion, Description: "Complete every section in a theme", BadgeType: models.BadgeTypeThemeCompletion, Points: 100},

	{Name: BadgeModuleCritic, Description: "Rate a module", BadgeType: models.BadgeTypeFeedback, Points: 5},
	{Name: BadgeCommentator, Description: "Leave a comment on a module", BadgeType: models.BadgeTypeFeedback, Points: 5},
	{Name: BadgeIdeaMachine, Description: "Send a suggestion", BadgeType: models.BadgeTypeFeedback, Points: 10},
	{Name: BadgeBugHunter, Description: "Report an issue", BadgeType: models.BadgeTypeFeedback, Points: 10},
}
