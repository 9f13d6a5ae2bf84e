// Package settings resolves the "basic" and "advanced" configuration groups.
// Every read goes back to the Fetcher so callers always work on a fresh,
// immutable snapshot.
package settings

import (
	"context"

	"go.uber.org/zap"
)

const (
	GroupBasic    = "basic"
	GroupAdvanced = "advanced"
)

// BasicConfig toggles the individual tag blocks. The zero value disables
// everything.
type BasicConfig struct {
	EnableCanonicalTags   bool `json:"enableCanonicalTags" yaml:"enableCanonicalTags"`
	EnableBaiduStructured bool `json:"enableBaiduStructured" yaml:"enableBaiduStructured"`
	EnableSchemaOrg       bool `json:"enableSchemaOrg" yaml:"enableSchemaOrg"`
	EnableOpenGraph       bool `json:"enableOpenGraph" yaml:"enableOpenGraph"`
	EnableTwitterCards    bool `json:"enableTwitterCards" yaml:"enableTwitterCards"`
	EnableRobotsMeta      bool `json:"enableRobotsMeta" yaml:"enableRobotsMeta"`
	EnableEnhancedSocial  bool `json:"enableEnhancedSocial" yaml:"enableEnhancedSocial"`
	EnableLinkedIn        bool `json:"enableLinkedIn" yaml:"enableLinkedIn"`
	EnableFacebook        bool `json:"enableFacebook" yaml:"enableFacebook"`
	EnableFAQSchema       bool `json:"enableFAQSchema" yaml:"enableFAQSchema"`
	EnableHowToSchema     bool `json:"enableHowToSchema" yaml:"enableHowToSchema"`
	EnableWeChatSharing   bool `json:"enableWeChatSharing" yaml:"enableWeChatSharing"`
	EnableVerification    bool `json:"enableVerification" yaml:"enableVerification"`

	RobotsIndex          string `json:"robotsIndex" yaml:"robotsIndex"`                   // index | noindex
	RobotsFollow         string `json:"robotsFollow" yaml:"robotsFollow"`                 // follow | nofollow
	ContentTypeDetection string `json:"contentTypeDetection" yaml:"contentTypeDetection"` // auto | manual | disabled
	DefaultImage         string `json:"defaultImage" yaml:"defaultImage"`
	PublisherName        string `json:"publisherName" yaml:"publisherName"`
	ArticleSchemaType    string `json:"articleSchemaType" yaml:"articleSchemaType"`
	TwitterSite          string `json:"twitterSite" yaml:"twitterSite"`
	FacebookAppID        string `json:"facebookAppId" yaml:"facebookAppId"`

	GoogleVerificationCode string `json:"googleVerificationCode" yaml:"googleVerificationCode"`
	BingVerificationCode   string `json:"bingVerificationCode" yaml:"bingVerificationCode"`
	BaiduVerificationCode  string `json:"baiduVerificationCode" yaml:"baiduVerificationCode"`
}

// AdvancedConfig holds the push credentials and toggles.
type AdvancedConfig struct {
	EnableAutoPush   bool   `json:"enableAutoPush" yaml:"enableAutoPush"`
	EnableGooglePush bool   `json:"enableGooglePush" yaml:"enableGooglePush"`
	GoogleAPIKey     string `json:"googleApiKey" yaml:"googleApiKey"`
	EnableBingPush   bool   `json:"enableBingPush" yaml:"enableBingPush"`
	BingAPIKey       string `json:"bingApiKey" yaml:"bingApiKey"`
	EnableBaiduPush  bool   `json:"enableBaiduPush" yaml:"enableBaiduPush"`
	BaiduAPIKey      string `json:"baiduApiKey" yaml:"baiduApiKey"`
	SiteURL          string `json:"siteUrl" yaml:"siteUrl"`
}

// Fetcher loads a named group into v. found is false when the group is not
// configured at all, in which case v is left untouched.
type Fetcher interface {
	Fetch(ctx context.Context, group string, v any) (found bool, err error)
}

// Getter hands out config snapshots. Lookup failures are logged and turned
// into zero values, which disables the affected features.
type Getter interface {
	BasicConfig(ctx context.Context) BasicConfig
	AdvancedConfig(ctx context.Context) AdvancedConfig
}

type getter struct {
	l       *zap.Logger
	fetcher Fetcher
}

func NewGetter(l *zap.Logger, fetcher Fetcher) Getter {
	if l == nil {
		l = zap.NewNop()
	}
	return &getter{l: l, fetcher: fetcher}
}

func (g *getter) BasicConfig(ctx context.Context) BasicConfig {
	var cfg BasicConfig
	if !g.fetch(ctx, GroupBasic, &cfg) {
		return BasicConfig{}
	}
	return cfg
}

func (g *getter) AdvancedConfig(ctx context.Context) AdvancedConfig {
	var cfg AdvancedConfig
	if !g.fetch(ctx, GroupAdvanced, &cfg) {
		return AdvancedConfig{}
	}
	return cfg
}

// fetch reports false when v must not be trusted.
func (g *getter) fetch(ctx context.Context, group string, v any) bool {
	if g.fetcher == nil {
		return false
	}
	found, err := g.fetcher.Fetch(ctx, group, v)
	if err != nil {
		g.l.Warn("failed to fetch settings group, using defaults", zap.String("group", group), zap.Error(err))
		return false
	}
	if !found {
		g.l.Debug("settings group not configured", zap.String("group", group))
	}
	return true
}

// Static is a Getter over fixed values.
type Static struct {
	Basic    BasicConfig
	Advanced AdvancedConfig
}

func (s Static) BasicConfig(context.Context) BasicConfig {
	return s.Basic
}

func (s Static) AdvancedConfig(context.Context) AdvancedConfig {
	return s.Advanced
}
