// Package webhook là adapter plugin tổng quát: mọi thao tác capability được
// chuyển thành một HTTP POST tới endpoint cấu hình, body {operation, payload}.
// Bên nhận (Slack bridge, Jira bridge, PagerDuty bridge...) tự dịch operation
// sang API của hệ thống đích.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meta_response/internal/api/plugin/capability"
	"meta_response/internal/common"
)

// Adapter gọi một webhook endpoint cho mọi thao tác capability.
// Secret được gửi qua header Authorization, không bao giờ được log.
type Adapter struct {
	capability string
	endpoint   string
	secret     string
	headers    map[string]string
	client     *http.Client
}

// NewAdapter tạo adapter từ config đã giải mã của một plugin instance.
// Config keys: endpoint (bắt buộc), secret, headers (map string → string).
func NewAdapter(cap string, cfg map[string]interface{}, timeout time.Duration) *Adapter {
	endpoint, _ := cfg["endpoint"].(string)
	secret, _ := cfg["secret"].(string)

	headers := map[string]string{}
	if rawHeaders, ok := cfg["headers"].(map[string]interface{}); ok {
		for k, v := range rawHeaders {
			if s, ok := v.(string); ok {
				headers[k] = s
			}
		}
	}

	return &Adapter{
		capability: cap,
		endpoint:   endpoint,
		secret:     secret,
		headers:    headers,
		client:     &http.Client{Timeout: timeout},
	}
}

// envelope là body gửi đi cho mỗi thao tác
type envelope struct {
	Operation string      `json:"operation"`
	Payload   interface{} `json:"payload"`
}

// call thực hiện một thao tác. out nil nghĩa là không cần đọc kết quả.
func (a *Adapter) call(ctx context.Context, operation string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(envelope{Operation: operation, Payload: payload})
	if err != nil {
		return common.NewPluginError(a.capability, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return common.NewPluginError(a.capability, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.secret != "" {
		req.Header.Set("Authorization", "Bearer "+a.secret)
	}
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return common.NewPluginError(a.capability, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return common.NewPluginError(a.capability,
			fmt.Errorf("operation %s: HTTP %d: %s", operation, resp.StatusCode, string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return common.NewPluginError(a.capability, fmt.Errorf("operation %s: decode response: %w", operation, err))
		}
	}
	return nil
}

// --- ticket ---

func (a *Adapter) CreateTicket(ctx context.Context, snapshot capability.SubjectSnapshot) (capability.TicketRef, error) {
	var ref capability.TicketRef
	err := a.call(ctx, "ticket.create", snapshot, &ref)
	return ref, err
}

func (a *Adapter) UpdateTicket(ctx context.Context, resourceID string, snapshot capability.SubjectSnapshot) error {
	return a.call(ctx, "ticket.update", map[string]interface{}{
		"resourceId": resourceID,
		"snapshot":   snapshot,
	}, nil)
}

func (a *Adapter) DeleteTicket(ctx context.Context, resourceID string) error {
	return a.call(ctx, "ticket.delete", map[string]interface{}{"resourceId": resourceID}, nil)
}

// --- chat ---

func (a *Adapter) CreateChannel(ctx context.Context, name string, members []string) (capability.ChannelRef, error) {
	var ref capability.ChannelRef
	err := a.call(ctx, "chat.create_channel", map[string]interface{}{
		"name":    name,
		"members": members,
	}, &ref)
	return ref, err
}

func (a *Adapter) AddMembers(ctx context.Context, channelID string, members []string) error {
	return a.call(ctx, "chat.add_members", map[string]interface{}{
		"channelId": channelID,
		"members":   members,
	}, nil)
}

func (a *Adapter) RemoveMembers(ctx context.Context, channelID string, members []string) error {
	return a.call(ctx, "chat.remove_members", map[string]interface{}{
		"channelId": channelID,
		"members":   members,
	}, nil)
}

func (a *Adapter) SendMessage(ctx context.Context, channelID, text, template, messageType string) error {
	return a.call(ctx, "chat.send", map[string]interface{}{
		"channelId": channelID,
		"text":      text,
		"template":  template,
		"type":      messageType,
	}, nil)
}

func (a *Adapter) SendDirect(ctx context.Context, email, text string) error {
	return a.call(ctx, "chat.send_direct", map[string]interface{}{
		"email": email,
		"text":  text,
	}, nil)
}

func (a *Adapter) ArchiveChannel(ctx context.Context, channelID string) error {
	return a.call(ctx, "chat.archive", map[string]interface{}{"channelId": channelID}, nil)
}

// --- storage ---

func (a *Adapter) CreateFolder(ctx context.Context, parentID, name string, members []string) (capability.FolderRef, error) {
	var ref capability.FolderRef
	err := a.call(ctx, "storage.create_folder", map[string]interface{}{
		"parentId": parentID,
		"name":     name,
		"members":  members,
	}, &ref)
	return ref, err
}

func (a *Adapter) AddFile(ctx context.Context, folderID, name string, content []byte) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := a.call(ctx, "storage.add_file", map[string]interface{}{
		"folderId": folderID,
		"name":     name,
		"content":  content,
	}, &out)
	return out.ID, err
}

func (a *Adapter) MoveFile(ctx context.Context, fileID, targetFolderID string) error {
	return a.call(ctx, "storage.move_file", map[string]interface{}{
		"fileId":         fileID,
		"targetFolderId": targetFolderID,
	}, nil)
}

func (a *Adapter) ListFiles(ctx context.Context, folderID string) ([]string, error) {
	var out struct {
		Files []string `json:"files"`
	}
	err := a.call(ctx, "storage.list", map[string]interface{}{"folderId": folderID}, &out)
	return out.Files, err
}

func (a *Adapter) AddParticipant(ctx context.Context, folderID, email string) error {
	return a.call(ctx, "storage.add_participant", map[string]interface{}{
		"folderId": folderID,
		"email":    email,
	}, nil)
}

func (a *Adapter) RemoveParticipant(ctx context.Context, folderID, email string) error {
	return a.call(ctx, "storage.remove_participant", map[string]interface{}{
		"folderId": folderID,
		"email":    email,
	}, nil)
}

func (a *Adapter) DeleteFolder(ctx context.Context, folderID string) error {
	return a.call(ctx, "storage.delete", map[string]interface{}{"folderId": folderID}, nil)
}

// --- document ---

func (a *Adapter) GetDocument(ctx context.Context, documentID string) (capability.DocumentRef, error) {
	var ref capability.DocumentRef
	err := a.call(ctx, "document.get", map[string]interface{}{"documentId": documentID}, &ref)
	return ref, err
}

func (a *Adapter) CreateDocument(ctx context.Context, folderID, name, templateID string) (capability.DocumentRef, error) {
	var ref capability.DocumentRef
	err := a.call(ctx, "document.create", map[string]interface{}{
		"folderId":   folderID,
		"name":       name,
		"templateId": templateID,
	}, &ref)
	return ref, err
}

func (a *Adapter) UpdateDocument(ctx context.Context, documentID string, replacements map[string]string) error {
	return a.call(ctx, "document.update", map[string]interface{}{
		"documentId":   documentID,
		"replacements": replacements,
	}, nil)
}

func (a *Adapter) DeleteDocument(ctx context.Context, documentID string) error {
	return a.call(ctx, "document.delete", map[string]interface{}{"documentId": documentID}, nil)
}

// --- oncall ---

func (a *Adapter) Current(ctx context.Context, serviceID string) (capability.OncallShift, error) {
	var shift capability.OncallShift
	err := a.call(ctx, "oncall.current", map[string]interface{}{"serviceId": serviceID}, &shift)
	return shift, err
}

func (a *Adapter) Page(ctx context.Context, serviceID, incidentSummary string) error {
	return a.call(ctx, "oncall.page", map[string]interface{}{
		"serviceId": serviceID,
		"summary":   incidentSummary,
	}, nil)
}

func (a *Adapter) DidJustGoOffShift(ctx context.Context, serviceID string) (bool, error) {
	var out struct {
		Value bool `json:"value"`
	}
	err := a.call(ctx, "oncall.did_just_go_off_shift", map[string]interface{}{"serviceId": serviceID}, &out)
	return out.Value, err
}

// --- email ---

func (a *Adapter) SendEmail(ctx context.Context, to []string, subject, template, messageType string, vars map[string]interface{}) error {
	return a.call(ctx, "email.send", map[string]interface{}{
		"to":       to,
		"subject":  subject,
		"template": template,
		"type":     messageType,
		"vars":     vars,
	}, nil)
}

// --- conference ---

func (a *Adapter) CreateConference(ctx context.Context, meetingSubject string) (capability.ConferenceRef, error) {
	var ref capability.ConferenceRef
	err := a.call(ctx, "conference.create", map[string]interface{}{"subject": meetingSubject}, &ref)
	return ref, err
}

// --- participant-group ---

func (a *Adapter) CreateGroup(ctx context.Context, name string, members []string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := a.call(ctx, "group.create", map[string]interface{}{
		"name":    name,
		"members": members,
	}, &out)
	return out.ID, err
}

func (a *Adapter) AddGroupMember(ctx context.Context, groupID, email string) error {
	return a.call(ctx, "group.add_member", map[string]interface{}{
		"groupId": groupID,
		"email":   email,
	}, nil)
}

func (a *Adapter) RemoveGroupMember(ctx context.Context, groupID, email string) error {
	return a.call(ctx, "group.remove_member", map[string]interface{}{
		"groupId": groupID,
		"email":   email,
	}, nil)
}

func (a *Adapter) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	var out struct {
		Members []string `json:"members"`
	}
	err := a.call(ctx, "group.list_members", map[string]interface{}{"groupId": groupID}, &out)
	return out.Members, err
}

func (a *Adapter) DeleteGroup(ctx context.Context, groupID string) error {
	return a.call(ctx, "group.delete", map[string]interface{}{"groupId": groupID}, nil)
}

// --- auth-provider ---

func (a *Adapter) Identify(ctx context.Context, headers map[string]string) (string, error) {
	var out struct {
		Email string `json:"email"`
	}
	err := a.call(ctx, "auth.identify", map[string]interface{}{"headers": headers}, &out)
	return out.Email, err
}

// --- signal-enrichment ---

func (a *Adapter) Enrich(ctx context.Context, raw map[string]interface{}) (map[string]interface{}, error) {
	var out struct {
		Raw map[string]interface{} `json:"raw"`
	}
	err := a.call(ctx, "signal.enrich", map[string]interface{}{"raw": raw}, &out)
	return out.Raw, err
}

// Đảm bảo Adapter implement đủ các capability interface
var (
	_ capability.TicketPlugin           = (*Adapter)(nil)
	_ capability.ChatPlugin             = (*Adapter)(nil)
	_ capability.StoragePlugin          = (*Adapter)(nil)
	_ capability.DocumentPlugin         = (*Adapter)(nil)
	_ capability.OncallPlugin           = (*Adapter)(nil)
	_ capability.EmailPlugin            = (*Adapter)(nil)
	_ capability.ConferencePlugin       = (*Adapter)(nil)
	_ capability.ParticipantGroupPlugin = (*Adapter)(nil)
	_ capability.AuthProviderPlugin     = (*Adapter)(nil)
	_ capability.SignalEnrichmentPlugin = (*Adapter)(nil)
)
