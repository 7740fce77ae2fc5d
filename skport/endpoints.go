package skport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Attendance claims the daily sign-in reward for the given role. The
// returned slice preserves the server's awardIds order: index 0 is the
// primary daily reward, the remainder are bonus rewards. Callers that
// split "reward" from "bonus" rely on that order.
func (c *Client) Attendance(ctx context.Context, session *Session, role GameRole) ([]Reward, error) {
	var payload attendancePayload

	if err := c.do(ctx, request{
		method:   http.MethodPost,
		base:     c.apiBase,
		path:     "/web/v1/game/endfield/attendance",
		session:  session,
		signBody: "",
		role:     &role,
	}, &payload); err != nil {
		return nil, err
	}

	rewards := make([]Reward, 0, len(payload.AwardIDs))

	for _, award := range payload.AwardIDs {
		info, ok := payload.ResourceInfoMap[award.ID]
		if !ok {
			continue
		}

		if info.ID == "" {
			info.ID = award.ID
		}

		rewards = append(rewards, info)
	}

	return rewards, nil
}

// Binding lists the player's game account bindings. Used during the link
// flow to discover serverId and roleId; steady-state operations reuse the
// stored values.
func (c *Client) Binding(ctx context.Context, session *Session) ([]Binding, error) {
	var bindings []Binding

	if err := c.do(ctx, request{
		method:   http.MethodGet,
		base:     c.apiBase,
		path:     "/api/v1/game/player/binding",
		session:  session,
		signBody: "{}",
		dataPath: "data.list",
	}, &bindings); err != nil {
		return nil, err
	}

	return bindings, nil
}

// DefaultEndfieldRole picks the default endfield role from a binding list.
func DefaultEndfieldRole(bindings []Binding) (GameRole, error) {
	for _, b := range bindings {
		if b.AppCode != "endfield" {
			continue
		}

		for _, entry := range b.BindingList {
			if entry.DefaultRole.RoleID != "" {
				return entry.DefaultRole, nil
			}

			if len(entry.Roles) > 0 {
				return entry.Roles[0], nil
			}
		}
	}

	return GameRole{}, fmt.Errorf("no endfield role in binding list")
}

// CardDetail fetches the profile snapshot for the given role.
func (c *Client) CardDetail(ctx context.Context, session *Session, role GameRole) (CardDetail, error) {
	query := url.Values{}
	query.Set("serverId", role.ServerID)
	query.Set("roleId", role.RoleID)
	query.Set("userId", session.UserID)

	var detail CardDetail

	if err := c.do(ctx, request{
		method:   http.MethodGet,
		base:     c.apiBase,
		path:     "/api/v1/game/endfield/card/detail",
		query:    query,
		session:  session,
		signBody: "{}",
	}, &detail); err != nil {
		return CardDetail{}, err
	}

	return detail, nil
}

// Wiki catalog identifiers. Main type 1 is the game data catalog; sub
// types select the item family within it.
const (
	WikiMainGame     = 1
	WikiSubOperators = 1
	WikiSubWeapons   = 2
)

// WikiCatalog lists near-static catalog items (operators, weapons). The
// endpoint is unauthenticated; responses are good candidates for long-TTL
// caching.
func (c *Client) WikiCatalog(ctx context.Context, mainID, subID int) ([]WikiItem, error) {
	query := url.Values{}
	query.Set("typeMainId", strconv.Itoa(mainID))
	query.Set("typeSubId", strconv.Itoa(subID))

	var items []WikiItem

	if err := c.do(ctx, request{
		method:   http.MethodGet,
		base:     c.apiBase,
		path:     "/web/v1/wiki/item/catalog",
		query:    query,
		dataPath: "data.catalog.0.typeSub.0.items",
	}, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// Redeem submits a gift code for the given role. token is the game-hub
// session token, not the credential token.
func (c *Client) Redeem(ctx context.Context, code, channelID, token string, role GameRole) (RedeemResult, error) {
	req := struct {
		ChannelID string `json:"channelId"`
		Code      string `json:"code"`
		Confirm   bool   `json:"confirm"`
		Platform  string `json:"platform"`
		ServerID  string `json:"serverId"`
		Token     string `json:"token"`
	}{ChannelID: channelID, Code: code, Platform: "iOS", ServerID: role.ServerID, Token: token}

	var result RedeemResult

	if err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.hubBase,
		path:   "/giftcode/api/redeem",
		body:   req,
	}, &result); err != nil {
		return RedeemResult{}, err
	}

	return result, nil
}
