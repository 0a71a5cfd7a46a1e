package repository

const upsertAccountCypher = `
MERGE (a:Account {accountId: $accountId})
SET a.holder = $holder
RETURN a.accountId AS accountId
`

const upsertTransferCypher = `
MERGE (s:Account {accountId: $senderId})
MERGE (r:Account {accountId: $receiverId})
MERGE (s)-[t:TRANSFER {transactionId: $transactionId}]->(r)
SET t += $props
RETURN t.transactionId AS transactionId
`

const upsertFlagCypher = `
MERGE (f:Flag {flagId: $flagId})
SET f.kind = $kind,
	f.reason = $reason,
	f.score = $score,
	f.transactionIds = $transactionIds
WITH f
FOREACH (acct IN $accounts |
	MERGE (a:Account {accountId: acct})
	MERGE (f)-[:INVOLVES]->(a)
)
WITH f
MATCH ()-[t:TRANSFER]->()
WHERE t.transactionId IN $transactionIds
SET t.suspicious = true
RETURN f.flagId AS flagId
`

const flagCountsCypher = `
MATCH (f:Flag)
RETURN f.kind AS kind, count(f) AS flags
ORDER BY kind
`
