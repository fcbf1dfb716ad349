package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE documents (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				is_active BOOLEAN NOT NULL DEFAULT false,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				viewport JSONB NOT NULL DEFAULT '{"x":0,"y":0,"zoom":1}',
				version BIGINT NOT NULL DEFAULT 1,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_documents_is_active ON documents(is_active);
			CREATE INDEX idx_documents_created_at ON documents(created_at);
		`,
	}
}
