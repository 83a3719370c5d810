package config

type WorkerKeyStruct struct {
	CheckpointQueue string
}

var WorkerKey = &WorkerKeyStruct{
	CheckpointQueue: "persist_checkpoints_queue",
}
