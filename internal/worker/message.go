package worker

// Job はワーカーが一度だけ実行するジョブを表す
type Job func()

// MessageKind はメッセージの種別
type MessageKind int

const (
	// MessageNewJob はジョブの実行要求
	MessageNewJob MessageKind = iota
	// MessageTerminate はワーカーへの終了要求
	MessageTerminate
)

func (k MessageKind) String() string {
	switch k {
	case MessageNewJob:
		return "NewJob"
	case MessageTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// Message はディスパッチキューの要素
type Message struct {
	Kind MessageKind
	Job  Job
}

// NewJob はジョブ実行メッセージを作成する
func NewJob(job Job) Message {
	return Message{Kind: MessageNewJob, Job: job}
}

// Terminate は終了メッセージを作成する
func Terminate() Message {
	return Message{Kind: MessageTerminate}
}
