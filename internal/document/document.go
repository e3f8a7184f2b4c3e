package document

// 文档中的保留字段。
const (
	FieldDestination   = "destination"
	FieldUUID          = "uuid"
	FieldObjectID      = "objectId"
	FieldIngestion     = "ingestion"
	FieldReceivedAt    = "receivedAt"
	FieldSourceAddress = "sourceAddress"
)

// TimestampFields 列出需要转换为时间类型的已知字段。
var TimestampFields = []string{"ts", "uploadTs", "queueTs"}

// Document 是统一的文档值模型：标量、[]any 序列或嵌套的 map[string]any。
type Document = map[string]any

// Normalized 是通过校验的文档，Destination 已从 Payload 中移除。
type Normalized struct {
	Destination string
	Payload     Document
}

// Identity 返回文档的 (uuid, objectId) 组合。
func (n Normalized) Identity() (any, any) {
	return n.Payload[FieldUUID], n.Payload[FieldObjectID]
}
