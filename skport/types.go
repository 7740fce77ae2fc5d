package skport

// LoginResult is returned from POST /user/auth/v1/token_by_email_password.
// Token is the long-lived credential token persisted per linked account.
type LoginResult struct {
	Token string `json:"token"`
	HgID  string `json:"hgId"`
	Email string `json:"email"`
}

// GrantType selects which OAuth grant the authorization server issues.
type GrantType int

const (
	// GrantTypeCode yields a single-use exchange code (steady-state signing).
	GrantTypeCode GrantType = 0

	// GrantTypeToken yields an OAuth token plus hgId (initial login flow only).
	GrantTypeToken GrantType = 1
)

// Grant is returned from POST /user/oauth2/v2/grant. UID and Code are set
// for GrantTypeCode; Token and HgID for GrantTypeToken. A grant is single
// use: exchanging the same code twice fails on the server side.
type Grant struct {
	UID   string `json:"uid"`
	Code  string `json:"code"`
	Token string `json:"token"`
	HgID  string `json:"hgId"`
}

// Session is the short-lived credential produced by the exchange step.
// The per-session signing secret is deliberately unexported: it must never
// be persisted or reused across logical operations, so nothing outside
// this package can read or serialize it. A fresh chain is run per command.
type Session struct {
	Cred   string
	UserID string

	signToken string
}

// GameRole identifies one game character binding on one server.
type GameRole struct {
	ServerID   string `json:"serverId"`
	RoleID     string `json:"roleId"`
	Nickname   string `json:"nickname"`
	Level      int    `json:"level"`
	IsDefault  bool   `json:"isDefault"`
	ServerName string `json:"serverName"`
}

// Binding is one app entry from GET /api/v1/game/player/binding.
type Binding struct {
	AppCode     string         `json:"appCode"`
	AppName     string         `json:"appName"`
	BindingList []BindingEntry `json:"bindingList"`
}

// BindingEntry is one account binding within a Binding.
type BindingEntry struct {
	UID         string     `json:"uid"`
	ChannelName string     `json:"channelName"`
	GameName    string     `json:"gameName"`
	Roles       []GameRole `json:"roles"`
	DefaultRole GameRole   `json:"defaultRole"`
}

// Reward is one resolved attendance reward. The slice returned by
// Attendance preserves the server's awardIds order: index 0 is the primary
// daily reward, the rest are bonus rewards.
type Reward struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
}

// attendancePayload is the raw data subtree of the attendance response.
type attendancePayload struct {
	AwardIDs []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"awardIds"`
	ResourceInfoMap map[string]Reward `json:"resourceInfoMap"`
}

// CardDetail is the per-role profile snapshot from
// GET /api/v1/game/endfield/card/detail.
type CardDetail struct {
	Base    CardBase        `json:"base"`
	Chars   []CardCharacter `json:"chars"`
	Dungeon CardDungeon     `json:"dungeon"`
}

// CardBase holds top-level role info in a CardDetail.
type CardBase struct {
	ServerName string `json:"serverName"`
	RoleID     string `json:"roleId"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	WorldLevel int    `json:"worldLevel"`
	AvatarURL  string `json:"avatarUrl"`
	CharNum    int    `json:"charNum"`
	WeaponNum  int    `json:"weaponNum"`
}

// CardCharacter is one owned operator in a CardDetail.
type CardCharacter struct {
	ID             string `json:"id"`
	Level          int    `json:"level"`
	EvolvePhase    int    `json:"evolvePhase"`
	PotentialLevel int    `json:"potentialLevel"`
	CharData       struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatarSqUrl"`
	} `json:"charData"`
}

// CardDungeon is the stamina block of a CardDetail.
type CardDungeon struct {
	CurStamina string `json:"curStamina"`
	MaxStamina string `json:"maxStamina"`
}

// WikiItem is one catalog entry from GET /web/v1/wiki/item/catalog.
type WikiItem struct {
	ItemID string    `json:"itemId"`
	Name   string    `json:"name"`
	Brief  WikiBrief `json:"brief"`
}

// WikiBrief is the preview block of a WikiItem.
type WikiBrief struct {
	Cover       string `json:"cover"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RedeemResult is returned from POST /giftcode/api/redeem.
type RedeemResult struct {
	RedeemResult struct {
		RecordID string `json:"recordId"`
	} `json:"redeemResult"`
}
