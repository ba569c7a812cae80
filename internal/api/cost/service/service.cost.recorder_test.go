package costsvc

import (
	"testing"

	models "meta_response/internal/api/cost/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func span(eventID primitive.ObjectID, startedAt, endedAt int64) *models.ParticipantActivity {
	return &models.ParticipantActivity{
		ID:            primitive.NewObjectID(),
		PluginEventID: eventID,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
	}
}

func TestDecideMergeFreshInsert(t *testing.T) {
	d := decideMerge(nil, nil, 1_000, 5_000)
	assert.Equal(t, mergeInsert, d.kind)
	assert.Equal(t, int64(4_000), d.delta)
}

func TestDecideMergeExtendsSameEvent(t *testing.T) {
	eventID := primitive.NewObjectID()
	prior := span(eventID, 0, 3_000)

	d := decideMerge(prior, nil, 2_000, 10_000)
	assert.Equal(t, mergeExtend, d.kind)
	assert.Equal(t, int64(10_000), d.newEnd)
	assert.Equal(t, int64(7_000), d.delta, "delta là phần kéo dài so với endedAt cũ")
}

func TestDecideMergeExtendIdempotent(t *testing.T) {
	eventID := primitive.NewObjectID()
	prior := span(eventID, 0, 10_000)

	// Span mới nằm gọn trong span cũ: nối nhưng delta bằng 0
	d := decideMerge(prior, nil, 2_000, 8_000)
	assert.Equal(t, mergeExtend, d.kind)
	assert.Equal(t, int64(10_000), d.newEnd)
	assert.Equal(t, int64(0), d.delta)
}

func TestDecideMergeExtendTouchingBoundary(t *testing.T) {
	eventID := primitive.NewObjectID()
	prior := span(eventID, 0, 5_000)

	// endedAt cũ đúng bằng startedAt mới vẫn tính là liền kề
	d := decideMerge(prior, nil, 5_000, 9_000)
	assert.Equal(t, mergeExtend, d.kind)
	assert.Equal(t, int64(4_000), d.delta)
}

func TestDecideMergeClampsOtherEvent(t *testing.T) {
	other := span(primitive.NewObjectID(), 0, 6_000)

	// Span cũ khác event chồng lấn startedAt mới: cắt rồi chèn
	d := decideMerge(nil, other, 4_000, 9_000)
	assert.Equal(t, mergeClamp, d.kind)
	assert.Equal(t, int64(5_000), d.delta)
}

func TestDecideMergeSameEventTakesPrecedenceOverClamp(t *testing.T) {
	eventID := primitive.NewObjectID()
	same := span(eventID, 0, 5_000)
	other := span(primitive.NewObjectID(), 0, 6_000)

	d := decideMerge(same, other, 4_000, 9_000)
	assert.Equal(t, mergeExtend, d.kind)
}

func TestDecideMergeDisjointPriorInserts(t *testing.T) {
	eventID := primitive.NewObjectID()
	same := span(eventID, 0, 1_000)
	other := span(primitive.NewObjectID(), 0, 2_000)

	// Cả hai span cũ đều kết thúc trước startedAt mới: chèn bình thường
	d := decideMerge(same, other, 3_000, 7_000)
	assert.Equal(t, mergeInsert, d.kind)
	assert.Equal(t, int64(4_000), d.delta)
}

func TestDecideMergeZeroLengthSpan(t *testing.T) {
	d := decideMerge(nil, nil, 5_000, 5_000)
	assert.Equal(t, mergeInsert, d.kind)
	assert.Equal(t, int64(0), d.delta)
}
