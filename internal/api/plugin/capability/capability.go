// Package capability định nghĩa các interface mà core gọi ra plugin bên ngoài.
// Mỗi capability là một nhóm thao tác; mỗi project chỉ có tối đa một instance
// được bật cho một capability tại một thời điểm.
package capability

import (
	"context"
	"time"
)

// Tên các capability được hỗ trợ
const (
	Ticket           = "ticket"
	Chat             = "chat"
	Storage          = "storage"
	Document         = "document"
	Oncall           = "oncall"
	Email            = "email"
	Conference       = "conference"
	ParticipantGroup = "participant-group"
	AuthProvider     = "auth-provider"
	SignalEnrichment = "signal-enrichment"
)

// All liệt kê mọi capability hợp lệ, dùng cho validation lúc lưu instance.
var All = []string{
	Ticket, Chat, Storage, Document, Oncall,
	Email, Conference, ParticipantGroup, AuthProvider, SignalEnrichment,
}

// IsValid kiểm tra một tên capability có được hỗ trợ không
func IsValid(name string) bool {
	for _, c := range All {
		if c == name {
			return true
		}
	}
	return false
}

// SubjectSnapshot là ảnh chụp case/incident gửi cho plugin ticket.
// Với visibility restricted, Title đã được thay bằng tên type trước khi gửi.
type SubjectSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Severity    string `json:"severity"`
	Visibility  string `json:"visibility"`
	Weblink     string `json:"weblink,omitempty"`
}

// TicketRef là tham chiếu tới ticket đã tạo ở hệ thống ngoài
type TicketRef struct {
	ResourceID string `json:"resourceId"`
	Weblink    string `json:"weblink"`
}

// ChannelRef là tham chiếu tới kênh chat đã tạo
type ChannelRef struct {
	ID      string `json:"id"`
	Weblink string `json:"weblink"`
}

// FolderRef là tham chiếu tới thư mục lưu trữ
type FolderRef struct {
	ID      string `json:"id"`
	Weblink string `json:"weblink"`
}

// DocumentRef là tham chiếu tới tài liệu
type DocumentRef struct {
	ID      string `json:"id"`
	Weblink string `json:"weblink"`
}

// ConferenceRef là tham chiếu tới cuộc họp trực tuyến
type ConferenceRef struct {
	ID        string `json:"id"`
	Weblink   string `json:"weblink"`
	Challenge string `json:"challenge,omitempty"`
}

// OncallShift mô tả ca trực hiện tại của một service
type OncallShift struct {
	Email    string    `json:"email"`
	ShiftEnd time.Time `json:"shiftEnd"`
}

// TicketPlugin quản lý vòng đời ticket ở hệ thống ngoài
type TicketPlugin interface {
	CreateTicket(ctx context.Context, snapshot SubjectSnapshot) (TicketRef, error)
	UpdateTicket(ctx context.Context, resourceID string, snapshot SubjectSnapshot) error
	DeleteTicket(ctx context.Context, resourceID string) error
}

// ChatPlugin quản lý kênh hội thoại và gửi tin nhắn
type ChatPlugin interface {
	CreateChannel(ctx context.Context, name string, members []string) (ChannelRef, error)
	AddMembers(ctx context.Context, channelID string, members []string) error
	RemoveMembers(ctx context.Context, channelID string, members []string) error
	SendMessage(ctx context.Context, channelID, text, template, messageType string) error
	SendDirect(ctx context.Context, email, text string) error
	ArchiveChannel(ctx context.Context, channelID string) error
}

// StoragePlugin quản lý thư mục và file lưu trữ của case/incident
type StoragePlugin interface {
	CreateFolder(ctx context.Context, parentID, name string, members []string) (FolderRef, error)
	AddFile(ctx context.Context, folderID, name string, content []byte) (string, error)
	MoveFile(ctx context.Context, fileID, targetFolderID string) error
	ListFiles(ctx context.Context, folderID string) ([]string, error)
	AddParticipant(ctx context.Context, folderID, email string) error
	RemoveParticipant(ctx context.Context, folderID, email string) error
	DeleteFolder(ctx context.Context, folderID string) error
}

// DocumentPlugin quản lý tài liệu từ template (báo cáo sự cố, postmortem)
type DocumentPlugin interface {
	GetDocument(ctx context.Context, documentID string) (DocumentRef, error)
	CreateDocument(ctx context.Context, folderID, name, templateID string) (DocumentRef, error)
	UpdateDocument(ctx context.Context, documentID string, replacements map[string]string) error
	DeleteDocument(ctx context.Context, documentID string) error
}

// OncallPlugin truy vấn và điều phối hệ thống trực ca
type OncallPlugin interface {
	Current(ctx context.Context, serviceID string) (OncallShift, error)
	Page(ctx context.Context, serviceID, incidentSummary string) error
	DidJustGoOffShift(ctx context.Context, serviceID string) (bool, error)
}

// EmailPlugin gửi email theo template
type EmailPlugin interface {
	SendEmail(ctx context.Context, to []string, subject, template, messageType string, vars map[string]interface{}) error
}

// ConferencePlugin tạo cuộc họp trực tuyến cho incident
type ConferencePlugin interface {
	CreateConference(ctx context.Context, meetingSubject string) (ConferenceRef, error)
}

// ParticipantGroupPlugin quản lý nhóm thành viên ở hệ thống ngoài
type ParticipantGroupPlugin interface {
	CreateGroup(ctx context.Context, name string, members []string) (string, error)
	AddGroupMember(ctx context.Context, groupID, email string) error
	RemoveGroupMember(ctx context.Context, groupID, email string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// AuthProviderPlugin định danh người dùng từ request headers.
// Trả về chuỗi rỗng khi không định danh được.
type AuthProviderPlugin interface {
	Identify(ctx context.Context, headers map[string]string) (string, error)
}

// SignalEnrichmentPlugin bổ sung dữ liệu cho raw payload trước khi trích xuất entity
type SignalEnrichmentPlugin interface {
	Enrich(ctx context.Context, raw map[string]interface{}) (map[string]interface{}, error)
}
