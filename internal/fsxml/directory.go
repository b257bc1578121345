package fsxml

import (
	"context"
	"errors"
	"strconv"

	"github.com/iamarketings/Operator/internal/models"
)

type extensionFinder interface {
	ExtensionByNumber(ctx context.Context, number string) (models.Extension, error)
}

type DirectoryService struct {
	Extensions extensionFinder
}

// BuildDirectory returns the directory entry of one extension: its SIP
// secret, caller id, voicemail box and recording flags.
func (d *DirectoryService) BuildDirectory(ctx context.Context, user, domain string) (*Document, error) {
	if d.Extensions == nil {
		return nil, errors.New("extension repository is nil")
	}

	ext, err := d.Extensions.ExtensionByNumber(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Document{
		Type: "freeswitch/xml",
		Section: []Section{
			{
				Name: "directory",
				Domain: &DomainNode{
					Name: domain,
					User: []UserNode{UserEntry(ext)},
				},
			},
		},
	}, nil
}

// UserEntry maps an extension onto a directory user.
func UserEntry(ext models.Extension) UserNode {
	params := []ParamNode{
		{Name: "password", Value: ext.Secret},
		{Name: "vm-enabled", Value: strconv.FormatBool(ext.Voicemail.Enabled)},
	}
	if ext.Voicemail.Enabled {
		if ext.Voicemail.PIN != "" {
			params = append(params, ParamNode{Name: "vm-password", Value: ext.Voicemail.PIN})
		}
		if ext.Voicemail.Email != "" {
			params = append(params, ParamNode{Name: "vm-mailto", Value: ext.Voicemail.Email})
		}
	}

	return UserNode{
		ID:     ext.Number,
		Params: params,
		Vars: []VariableNode{
			{Name: "user_context", Value: "from-internal"},
			{Name: "effective_caller_id_name", Value: ext.Name},
			{Name: "effective_caller_id_number", Value: ext.Number},
			{Name: "sip_protocol", Value: string(ext.Protocol)},
			{Name: "record_inbound", Value: strconv.FormatBool(ext.CallRecording.Incoming)},
			{Name: "record_outbound", Value: strconv.FormatBool(ext.CallRecording.Outgoing)},
		},
	}
}
