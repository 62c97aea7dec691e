package service

// Inbound event names. The set is closed: the transport rejects anything
// else with an error reply instead of dispatching dynamically.
const (
	EventChallengePlayer = "challengePlayer"
	EventJoinQueue       = "joinQueue"
	EventInvitResponse   = "gameInvitResponse"
	EventSetMap          = "setMap"
	EventGiveUp          = "giveUpGame"
	EventGameFinished    = "gameFinished"
	EventWatchGame       = "watchGame"
	EventLeaveWatchGame  = "leaveWatchGame"

	EventScoreUpdate   = "scoreUpdate"
	EventPowerUpUpdate = "powerUpUpdate"
	EventBallPosUpdate = "ballPosUpdate"
	EventPlayerUpdate  = "playerUpdate"
)

// Outbound event names. EventSetMap doubles as the chooser prompt and
// EventGameFinished as the end-of-game announcement.
const (
	EventGameInvitation  = "gameInvitation"
	EventGameAccepted    = "gameAccepted"
	EventGameDenied      = "gameDenied"
	EventNewPlayerJoined = "newPlayerJoined"
	EventStartGame       = "startGame"
	EventCountDown       = "countDown"
	EventGetGameData     = "getGameData"
	EventGameForfeited   = "gameForfeited"
	EventError           = "error"
)
