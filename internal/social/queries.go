package social

// Cypher templates. Node and edge creation use MERGE on the full pattern so
// repeating a call never duplicates a User or a FRIENDS_WITH edge. Removal
// matches the directed edge only.
const (
	createUserQuery = `MERGE (u:User {username: $username})
RETURN u.username AS username`

	createFriendshipQuery = `MATCH (u1:User {username: $user1}), (u2:User {username: $user2})
MERGE (u1)-[:FRIENDS_WITH]->(u2)
RETURN u1.username AS user1, u2.username AS user2`

	listFriendsQuery = `MATCH (u:User {username: $username})-[:FRIENDS_WITH]->(friend:User)
RETURN friend.username AS friend
ORDER BY friend.username ASC`

	removeFriendshipQuery = `MATCH (u1:User {username: $user1})-[r:FRIENDS_WITH]->(u2:User {username: $user2})
DELETE r
RETURN u1.username AS user1, u2.username AS user2`
)
